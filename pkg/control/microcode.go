package control

import (
	"github.com/arnevogel/bb8cpu/pkg/alu"
	"github.com/arnevogel/bb8cpu/pkg/opcode"
)

// reg packs a RegAlias or alu.Op value into the C field (bits 0-4).
func reg(r RegAlias) Signals { return Signals(r) }
func op(a alu.Op) Signals    { return Signals(a) }

// signalsFromInput computes the active-high control word for one step of
// one opcode's execution, given the latched flags. step must be < 16.
//
// Grounded case-for-case in control.c's signals_from_input; every opcode
// family below corresponds to the identically-cased switch arm there.
func signalsFromInput(step uint8, zf, cf, of, sf bool, op8 opcode.Opcode) Signals {
	switch op8 {
	case opcode.NOP:
		switch step {
		case 0:
			return FetchOpcode
		case 7:
			return LdSNotLdC
		}
		return 0

	case opcode.HALT:
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return HaltNotLdC
		case 2:
			return LdSNotLdC
		}

	case opcode.LD_A_IMM8, opcode.LD_B_IMM8, opcode.LD_C_IMM8, opcode.LD_D_IMM8:
		dest := RegAlias(op8 - opcode.LD_A_IMM8)
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return OeMem | LdLS | CLsAluQ | reg(dest) | LdC | TgMC
		case 2:
			return OeALU | LdMem | TgMC | CeMNotLdC | LdSNotLdC
		}

	case opcode.LD_I_IMM16, opcode.LD_J_IMM16:
		destL := RegIL
		if op8 == opcode.LD_J_IMM16 {
			destL = RegJL
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return OeMem | LdLS | CLsAluQ | reg(destL) | LdC | TgMC
		case 2:
			return OeALU | LdMem | TgMC | CeMNotLdC
		case 3:
			return OeMem | LdLS | CLsAluQ | reg(destL+1) | LdC | TgMC
		case 4:
			return OeALU | LdMem | TgMC | CeMNotLdC | LdSNotLdC
		}

	case opcode.LD_A_I_PTR, opcode.LD_A_J_PTR:
		idxL := RegIL
		if op8 == opcode.LD_A_J_PTR {
			idxL = RegJL
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegTL) | LdC | TgMC
		case 2:
			return OeML | LdMem | reg(RegTH) | LdC
		case 3:
			return OeMH | LdMem | reg(idxL) | LdC
		case 4:
			return OeMem | LdML | reg(idxL+1) | LdC
		case 5:
			return OeMem | LdMH | TgMC
		case 6:
			return OeMem | LdLS | CLsAluQ | reg(RegA) | LdC | TgMC
		case 7:
			return OeALU | LdMem | reg(RegTL) | LdC
		case 8:
			return OeMem | LdML | reg(RegTH) | LdC
		case 9:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.LD_A_I_PTR_INC, opcode.LD_A_J_PTR_INC:
		idxL := RegIL
		if op8 == opcode.LD_A_J_PTR_INC {
			idxL = RegJL
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegTL) | LdC | TgMC
		case 2:
			return OeML | LdMem | reg(RegTH) | LdC
		case 3:
			return OeMH | LdMem | reg(idxL) | LdC
		case 4:
			return OeMem | LdML | reg(idxL+1) | LdC
		case 5:
			return OeMem | LdMH | TgMC
		case 6:
			return OeMem | LdLS | CeMNotLdC | TgMC
		case 7:
			return OeMH | LdMem | reg(idxL) | LdC
		case 8:
			return OeML | LdMem | CLsAluQ | reg(RegA) | LdC
		case 9:
			return OeALU | LdMem | reg(RegTL) | LdC
		case 10:
			return OeMem | LdML | reg(RegTH) | LdC
		case 11:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.LD_I_PTR_A, opcode.LD_J_PTR_A:
		idxL := RegIL
		if op8 == opcode.LD_J_PTR_A {
			idxL = RegJL
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegTL) | LdC | TgMC
		case 2:
			return OeML | LdMem | reg(RegTH) | LdC
		case 3:
			return OeMH | LdMem | reg(idxL) | LdC
		case 4:
			return OeMem | LdML | reg(idxL+1) | LdC
		case 5:
			return OeMem | LdMH | CLsAluQ | reg(RegA) | LdC
		case 6:
			return OeMem | LdLS | TgMC
		case 7:
			return OeALU | LdMem | reg(RegTL) | LdC | TgMC
		case 8:
			return OeMem | LdML | reg(RegTH) | LdC
		case 9:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.LD_I_PTR_INC_A, opcode.LD_J_PTR_INC_A:
		idxL := RegIL
		if op8 == opcode.LD_J_PTR_INC_A {
			idxL = RegJL
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegA) | LdC | TgMC
		case 2:
			return OeMem | LdLS | reg(RegTL) | LdC
		case 3:
			return OeML | LdMem | reg(RegTH) | LdC
		case 4:
			return OeMH | LdMem | reg(idxL) | LdC
		case 5:
			return OeMem | LdML | CLsAluQ | reg(idxL+1) | LdC
		case 6:
			return OeMem | LdMH | TgMC
		case 7:
			return OeALU | LdMem | CeMNotLdC | TgMC
		case 8:
			return OeMH | LdMem | reg(idxL) | LdC
		case 9:
			return OeML | LdMem | reg(RegTL) | LdC
		case 10:
			return OeMem | LdML | reg(RegTH) | LdC
		case 11:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.LD_I_PTR_AB, opcode.LD_I_PTR_CD, opcode.LD_J_PTR_CD:
		idxL := RegIL
		if op8 == opcode.LD_J_PTR_CD {
			idxL = RegJL
		}
		srcL, srcH := RegB, RegA
		if op8 != opcode.LD_I_PTR_AB {
			srcL, srcH = RegD, RegC
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegTL) | LdC | TgMC
		case 2:
			return OeML | LdMem | reg(RegTH) | LdC
		case 3:
			return OeMH | LdMem | reg(idxL) | LdC
		case 4:
			return OeMem | LdML | reg(idxL+1) | LdC
		case 5:
			return OeMem | LdMH | CLsAluQ | reg(srcL) | LdC
		case 6:
			return OeMem | LdLS | TgMC
		case 7:
			return OeALU | LdMem | CLsAluQ | reg(srcH) | LdC | TgMC
		case 8:
			return OeMem | LdLS | CeMNotLdC | TgMC
		case 9:
			return OeALU | LdMem | reg(RegTL) | LdC | TgMC
		case 10:
			return OeMem | LdML | reg(RegTH) | LdC
		case 11:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.LD_AB_I_PTR, opcode.LD_CD_I_PTR, opcode.LD_CD_J_PTR:
		idxL := RegIL
		if op8 == opcode.LD_CD_J_PTR {
			idxL = RegJL
		}
		destL, destH := RegB, RegA
		if op8 != opcode.LD_AB_I_PTR {
			destL, destH = RegD, RegC
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegTL) | LdC | TgMC
		case 2:
			return OeML | LdMem | reg(RegTH) | LdC
		case 3:
			return OeMH | LdMem | reg(idxL) | LdC
		case 4:
			return OeMem | LdML | reg(idxL+1) | LdC
		case 5:
			return OeMem | LdMH | CLsAluQ | reg(destL) | LdC | TgMC
		case 6:
			return OeMem | LdLS | CeMNotLdC | TgMC
		case 7:
			return OeALU | LdMem | CLsAluQ | reg(destH) | LdC | TgMC
		case 8:
			return OeMem | LdLS | TgMC
		case 9:
			return OeALU | LdMem | reg(RegTL) | LdC
		case 10:
			return OeMem | LdML | reg(RegTH) | LdC
		case 11:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.LD_A_B, opcode.LD_A_C, opcode.LD_A_D,
		opcode.LD_B_A, opcode.LD_B_C, opcode.LD_B_D,
		opcode.LD_C_A, opcode.LD_C_B, opcode.LD_C_D,
		opcode.LD_D_A, opcode.LD_D_B, opcode.LD_D_C:
		relative := uint8(op8 - 0x20)
		dest := RegAlias(relative >> 2)
		src := RegAlias(relative & 3)
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(src) | LdC | TgMC
		case 2:
			return OeMem | LdLS | CLsAluQ | reg(dest) | LdC
		case 3:
			return OeALU | LdMem | TgMC | LdSNotLdC
		}

	case opcode.INC_A, opcode.SHL_A, opcode.SHR_A, opcode.NOT_A, opcode.DEC_A, opcode.ROR_A,
		opcode.DEC_B, opcode.DEC_C, opcode.DEC_D, opcode.INC_B, opcode.INC_C, opcode.INC_D:
		var aluOp alu.Op
		var dest RegAlias
		switch op8 {
		case opcode.DEC_B, opcode.DEC_C, opcode.DEC_D:
			aluOp = alu.OpDecLS
		case opcode.INC_B, opcode.INC_C, opcode.INC_D:
			aluOp = alu.OpIncLS
		default:
			aluOp = alu.Op(op8 - opcode.INC_A)
		}
		switch op8 {
		case opcode.DEC_D, opcode.INC_D:
			dest = RegD
		case opcode.DEC_C, opcode.INC_C:
			dest = RegC
		case opcode.DEC_B, opcode.INC_B:
			dest = RegB
		default:
			dest = RegA
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(dest) | LdC | TgMC
		case 2:
			return OeMem | LdLS | op(aluOp) | LdC
		case 3:
			return OeALU | LdLS | CLsAluQ | reg(dest) | LdC
		case 4:
			return OeALU | LdMem | TgMC | LdSNotLdC
		}

	case opcode.ADD_A_B, opcode.OR_A_B, opcode.AND_A_B, opcode.XOR_A_B, opcode.ADC_A_B,
		opcode.ADD_D_B, opcode.ADC_C_A:
		var aluOp alu.Op
		var dest, src RegAlias
		switch op8 {
		case opcode.ADD_D_B:
			aluOp, dest, src = alu.OpAddRS, RegD, RegB
		case opcode.ADC_C_A:
			aluOp, dest, src = alu.OpAdcRS, RegC, RegA
		default:
			aluOp, dest, src = alu.Op(op8-opcode.ADD_A_B)+alu.OpAddRS, RegA, RegB
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(dest) | LdC | TgMC
		case 2:
			return OeMem | LdLS | reg(src) | LdC
		case 3:
			return OeMem | LdRSNotLdC
		case 4:
			return op(aluOp) | LdC
		case 5:
			return OeALU | LdLS | CLsAluQ | reg(dest) | LdC
		case 6:
			return OeALU | LdMem | TgMC | LdSNotLdC
		}

	case opcode.ADC_D_IMM8, opcode.ADD_A_IMM8, opcode.OR_A_IMM8, opcode.AND_A_IMM8,
		opcode.XOR_A_IMM8, opcode.ADC_A_IMM8, opcode.ADD_B_IMM8:
		var aluOp alu.Op
		var dest RegAlias
		switch op8 {
		case opcode.ADD_B_IMM8:
			aluOp, dest = alu.OpAddRS, RegB
		case opcode.ADC_D_IMM8:
			aluOp, dest = alu.OpAdcRS, RegD
		default:
			aluOp, dest = alu.Op(op8-opcode.ADD_A_IMM8)+alu.OpAddRS, RegA
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return OeMem | LdRSNotLdC | CeMNotLdC
		case 2:
			return reg(dest) | LdC | TgMC
		case 3:
			return OeMem | LdLS | op(aluOp) | LdC
		case 4:
			return OeALU | LdLS | CLsAluQ | reg(dest) | LdC
		case 5:
			return OeALU | LdMem | TgMC | LdSNotLdC
		}

	case opcode.CMP_A_IMM8, opcode.CMP_B_IMM8:
		dest := RegA
		if op8 == opcode.CMP_B_IMM8 {
			dest = RegB
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return OeMem | LdRSNotLdC | CeMNotLdC
		case 2:
			return reg(dest) | LdC | TgMC
		case 3:
			return OeMem | LdLS | op(alu.OpSubRS) | LdC
		case 4:
			return OeALU | LdLS | TgMC | LdSNotLdC
		}

	case opcode.OUT_PORT0_IMM8, opcode.OUT_PORT0_IMM8 + 1, opcode.OUT_PORT0_IMM8 + 2,
		opcode.OUT_PORT0_IMM8 + 3, opcode.OUT_PORT0_IMM8 + 4, opcode.OUT_PORT0_IMM8 + 5,
		opcode.OUT_PORT0_IMM8 + 6, opcode.OUT_PORT0_IMM8 + 7:
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return OeMem | LdIONotLdC
		case 2:
			return CeMNotLdC | LdSNotLdC
		}

	case opcode.IN_A_PORT0, opcode.IN_A_PORT0 + 1, opcode.IN_A_PORT0 + 2, opcode.IN_A_PORT0 + 3,
		opcode.IN_A_PORT0 + 4, opcode.IN_A_PORT0 + 5, opcode.IN_A_PORT0 + 6, opcode.IN_A_PORT0 + 7:
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return op(alu.OpSetIOOEFlag) | LdC | TgMC
		case 2:
			return LdC
		case 3:
			return LdLS | CLsAluQ | reg(RegA) | LdC
		case 4:
			return OeALU | LdMem | TgMC | LdSNotLdC
		}

	case opcode.OUT_PORT0_A, opcode.OUT_PORT0_A + 1, opcode.OUT_PORT0_A + 2, opcode.OUT_PORT0_A + 3,
		opcode.OUT_PORT0_A + 4, opcode.OUT_PORT0_A + 5, opcode.OUT_PORT0_A + 6, opcode.OUT_PORT0_A + 7:
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegA) | LdC | TgMC
		case 2:
			return OeMem | LdIONotLdC
		case 3:
			return TgMC | LdSNotLdC
		}

	case opcode.JMP_I, opcode.JMP_J:
		idxL := RegIL
		if op8 == opcode.JMP_J {
			idxL = RegJL
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(idxL) | LdC | TgMC
		case 2:
			return OeMem | LdML | reg(idxL+1) | LdC
		case 3:
			return OeMem | LdMH | LdSNotLdC | TgMC
		}

	case opcode.JMP_IMM16:
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return OeMem | LdLS | CeMNotLdC
		case 2:
			return OeMem | LdMH | CLsAluQ | LdC
		case 3:
			return OeALU | LdML | LdSNotLdC
		}

	case opcode.JZ_IMM16, opcode.JNZ_IMM16, opcode.JC_IMM16, opcode.JNC_IMM16,
		opcode.JO_IMM16, opcode.JNO_IMM16, opcode.JS_IMM16, opcode.JNS_IMM16:
		doJump := conditionHolds(op8, zf, cf, of, sf)
		if doJump {
			switch step {
			case 0:
				return FetchOpcode
			case 1:
				return OeMem | LdLS | CeMNotLdC
			case 2:
				return OeMem | LdMH | CLsAluQ | LdC
			case 3:
				return OeALU | LdML | LdSNotLdC
			}
		} else {
			switch step {
			case 0:
				return FetchOpcode
			case 1:
				return CeMNotLdC
			case 2:
				return CeMNotLdC
			case 3:
				return LdSNotLdC
			}
		}

	case opcode.LD_SP_IMM8:
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return OeMem | LdLS | CLsAluQ | reg(RegSPL) | LdC | TgMC
		case 2:
			return OeALU | LdMem | TgMC | CeMNotLdC | LdSNotLdC
		}

	case opcode.PUSH_A, opcode.PUSH_B, opcode.PUSH_C, opcode.PUSH_D:
		src := RegAlias(op8 - opcode.PUSH_A)
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegTL) | LdC | TgMC
		case 2:
			return OeML | LdMem | reg(RegTH) | LdC
		case 3:
			return OeMH | LdMem | reg(RegSPL) | LdC
		case 4:
			return OeMem | LdML
		case 5:
			return LdMH | CeMNotLdC
		case 6:
			return OeML | LdMem | CLsAluQ | reg(src) | LdC
		case 7:
			return OeMem | LdLS | TgMC
		case 8:
			return OeALU | LdMem | reg(RegTL) | LdC | TgMC
		case 9:
			return OeMem | LdML | reg(RegTH) | LdC
		case 10:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.PUSH_I, opcode.PUSH_J:
		srcL := RegIL
		if op8 == opcode.PUSH_J {
			srcL = RegJL
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegTL) | LdC | TgMC
		case 2:
			return OeML | LdMem | reg(RegTH) | LdC
		case 3:
			return OeMH | LdMem | reg(RegSPL) | LdC
		case 4:
			return OeMem | LdML | reg(srcL) | LdC
		case 5:
			return LdMH | CeMNotLdC
		case 6:
			return OeMem | LdLS | CLsAluQ | reg(srcL+1) | LdC | TgMC
		case 7:
			return OeALU | LdMem | CeMNotLdC | TgMC
		case 8:
			return OeMem | LdLS | TgMC
		case 9:
			return OeALU | LdMem | reg(RegSPL) | LdC | TgMC
		case 10:
			return OeML | LdMem | reg(RegTL) | LdC
		case 11:
			return OeMem | LdML | reg(RegTH) | LdC
		case 12:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.POP_A, opcode.POP_B, opcode.POP_C, opcode.POP_D:
		dest := RegAlias(op8 - opcode.POP_A)
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegTL) | LdC | TgMC
		case 2:
			return OeML | LdMem | reg(RegTH) | LdC
		case 3:
			return OeMH | LdMem | reg(RegSPL) | LdC
		case 4:
			return OeMem | LdML | LdLS
		case 5:
			return OeALU | LdMem
		case 6:
			return LdMH | TgMC
		case 7:
			return OeMem | LdLS | CLsAluQ | reg(dest) | LdC | TgMC
		case 8:
			return OeALU | LdMem | reg(RegTL) | LdC
		case 9:
			return OeMem | LdML | reg(RegTH) | LdC
		case 10:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.POP_I, opcode.POP_J:
		destL := RegIL
		if op8 == opcode.POP_J {
			destL = RegJL
		}
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegTL) | LdC | TgMC
		case 2:
			return OeML | LdMem | reg(RegTH) | LdC
		case 3:
			return OeMH | LdMem | reg(RegSPL) | LdC
		case 4:
			return OeMem | LdML | LdLS
		case 5:
			return OeALU | LdMem
		case 6:
			return LdMH | TgMC
		case 7:
			return OeMem | LdLS | CLsAluQ | reg(destL+1) | LdC | TgMC
		case 8:
			return OeALU | LdMem | reg(RegSPL) | LdC
		case 9:
			return OeMem | LdML | LdLS
		case 10:
			return OeALU | LdMem | TgMC
		case 11:
			return OeMem | LdLS | CLsAluQ | reg(destL) | LdC | TgMC
		case 12:
			return OeALU | LdMem | reg(RegTL) | LdC
		case 13:
			return OeMem | LdML | reg(RegTH) | LdC
		case 14:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.CALL_IMM16:
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return OeMem | LdLS | CLsAluQ | reg(RegTL) | LdC | TgMC
		case 2:
			return OeALU | LdMem | TgMC | CeMNotLdC
		case 3:
			return OeMem | LdLS | CLsAluQ | reg(RegTH) | LdC | TgMC
		case 4:
			return OeALU | LdMem | CeMNotLdC
		case 5:
			return OeML | LdLS | reg(RegUL) | LdC
		case 6:
			return OeMH | LdMem | reg(RegSPL) | LdC
		case 7:
			return OeMem | LdML | CLsAluQ | reg(RegUL) | LdC
		case 8:
			return LdMH | CeMNotLdC | TgMC
		case 9:
			return OeALU | LdMem | CeMNotLdC | TgMC
		case 10:
			return OeMem | LdLS | TgMC
		case 11:
			return OeALU | LdMem | reg(RegSPL) | LdC | TgMC
		case 12:
			return OeML | LdMem | reg(RegTL) | LdC
		case 13:
			return OeMem | LdML | reg(RegTH) | LdC
		case 14:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.RET:
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return reg(RegSPL) | LdC | TgMC
		case 2:
			return OeMem | LdML | LdLS
		case 3:
			return OeALU | LdMem
		case 4:
			return LdMH | TgMC
		case 5:
			return OeMem | LdLS | CLsAluQ | reg(RegTH) | LdC | TgMC
		case 6:
			return OeALU | LdMem | reg(RegSPL) | LdC
		case 7:
			return OeMem | LdML | LdLS
		case 8:
			return OeALU | LdMem | TgMC
		case 9:
			return OeMem | LdML | reg(RegTH) | LdC | TgMC
		case 10:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}

	case opcode.LD_A_SP_PLUS_IMM8:
		switch step {
		case 0:
			return FetchOpcode
		case 1:
			return OeMem | LdRSNotLdC | CeMNotLdC
		case 2:
			return reg(RegTL) | LdC | TgMC
		case 3:
			return OeML | LdMem | reg(RegTH) | LdC
		case 4:
			return OeMH | LdMem | reg(RegSPL) | LdC
		case 5:
			return OeMem | LdLS | op(alu.OpAddRS) | LdC
		case 6:
			return OeALU | LdML
		case 7:
			return LdMH | TgMC
		case 8:
			return OeMem | LdLS | CLsAluQ | reg(RegA) | LdC | TgMC
		case 9:
			return OeALU | LdMem | reg(RegTL) | LdC
		case 10:
			return OeMem | LdML | reg(RegTH) | LdC
		case 11:
			return OeMem | LdMH | TgMC | LdSNotLdC
		}
	}

	if step == 0 {
		return FetchOpcode
	}
	return HaltNotLdC
}

func conditionHolds(op8 opcode.Opcode, zf, cf, of, sf bool) bool {
	switch op8 {
	case opcode.JZ_IMM16:
		return zf
	case opcode.JNZ_IMM16:
		return !zf
	case opcode.JC_IMM16:
		return cf
	case opcode.JNC_IMM16:
		return !cf
	case opcode.JO_IMM16:
		return of
	case opcode.JNO_IMM16:
		return !of
	case opcode.JS_IMM16:
		return sf
	case opcode.JNS_IMM16:
		return !sf
	}
	return false
}
