package cpu

type instr struct {
	name   string
	mode   addrMode
	fn     func(*CPU)
	cycles uint8
}

var ill = instr{name: "???", mode: addrModeINH, fn: (*CPU).illegal}

// opcodes maps every opcode byte to its instruction. Cycle counts
// are the HD6301 ones.
var opcodes = [...]instr{
	// 0x00
	ill,
	{"NOP", addrModeINH, (*CPU).nop, 1},
	ill,
	ill,
	{"LSRD", addrModeINH, (*CPU).lsrd, 1},
	{"ASLD", addrModeINH, (*CPU).asld, 1},
	{"TAP", addrModeINH, (*CPU).tap, 1},
	{"TPA", addrModeINH, (*CPU).tpa, 1},
	{"INX", addrModeINH, (*CPU).inx, 1},
	{"DEX", addrModeINH, (*CPU).dex, 1},
	{"CLV", addrModeINH, (*CPU).clv, 1},
	{"SEV", addrModeINH, (*CPU).sev, 1},
	{"CLC", addrModeINH, (*CPU).clc, 1},
	{"SEC", addrModeINH, (*CPU).sec, 1},
	{"CLI", addrModeINH, (*CPU).cli, 1},
	{"SEI", addrModeINH, (*CPU).sei, 1},
	// 0x10
	{"SBA", addrModeINH, (*CPU).sba, 1},
	{"CBA", addrModeINH, (*CPU).cba, 1},
	ill,
	ill,
	ill,
	ill,
	{"TAB", addrModeINH, (*CPU).tab, 1},
	{"TBA", addrModeINH, (*CPU).tba, 1},
	{"XGDX", addrModeINH, (*CPU).xgdx, 2},
	{"DAA", addrModeINH, (*CPU).daa, 2},
	{"SLP", addrModeINH, (*CPU).slp, 4},
	{"ABA", addrModeINH, (*CPU).aba, 1},
	ill,
	ill,
	ill,
	ill,
	// 0x20
	{"BRA", addrModeREL, (*CPU).bra, 3},
	{"BRN", addrModeREL, (*CPU).brn, 3},
	{"BHI", addrModeREL, (*CPU).bhi, 3},
	{"BLS", addrModeREL, (*CPU).bls, 3},
	{"BCC", addrModeREL, (*CPU).bcc, 3},
	{"BCS", addrModeREL, (*CPU).bcs, 3},
	{"BNE", addrModeREL, (*CPU).bne, 3},
	{"BEQ", addrModeREL, (*CPU).beq, 3},
	{"BVC", addrModeREL, (*CPU).bvc, 3},
	{"BVS", addrModeREL, (*CPU).bvs, 3},
	{"BPL", addrModeREL, (*CPU).bpl, 3},
	{"BMI", addrModeREL, (*CPU).bmi, 3},
	{"BGE", addrModeREL, (*CPU).bge, 3},
	{"BLT", addrModeREL, (*CPU).blt, 3},
	{"BGT", addrModeREL, (*CPU).bgt, 3},
	{"BLE", addrModeREL, (*CPU).ble, 3},
	// 0x30
	{"TSX", addrModeINH, (*CPU).tsx, 1},
	{"INS", addrModeINH, (*CPU).ins, 1},
	{"PULA", addrModeINH, (*CPU).pula, 3},
	{"PULB", addrModeINH, (*CPU).pulb, 3},
	{"DES", addrModeINH, (*CPU).des, 1},
	{"TXS", addrModeINH, (*CPU).txs, 1},
	{"PSHA", addrModeINH, (*CPU).psha, 4},
	{"PSHB", addrModeINH, (*CPU).pshb, 4},
	{"PULX", addrModeINH, (*CPU).pulx, 4},
	{"RTS", addrModeINH, (*CPU).rts, 5},
	{"ABX", addrModeINH, (*CPU).abx, 1},
	{"RTI", addrModeINH, (*CPU).rti, 10},
	{"PSHX", addrModeINH, (*CPU).pshx, 5},
	{"MUL", addrModeINH, (*CPU).mul, 7},
	{"WAI", addrModeINH, (*CPU).wai, 9},
	{"SWI", addrModeINH, (*CPU).swi, 12},
	// 0x40
	{"NEGA", addrModeINH, (*CPU).nega, 1},
	ill,
	ill,
	{"COMA", addrModeINH, (*CPU).coma, 1},
	{"LSRA", addrModeINH, (*CPU).lsra, 1},
	ill,
	{"RORA", addrModeINH, (*CPU).rora, 1},
	{"ASRA", addrModeINH, (*CPU).asra, 1},
	{"ASLA", addrModeINH, (*CPU).asla, 1},
	{"ROLA", addrModeINH, (*CPU).rola, 1},
	{"DECA", addrModeINH, (*CPU).deca, 1},
	ill,
	{"INCA", addrModeINH, (*CPU).inca, 1},
	{"TSTA", addrModeINH, (*CPU).tsta, 1},
	ill,
	{"CLRA", addrModeINH, (*CPU).clra, 1},
	// 0x50
	{"NEGB", addrModeINH, (*CPU).negb, 1},
	ill,
	ill,
	{"COMB", addrModeINH, (*CPU).comb, 1},
	{"LSRB", addrModeINH, (*CPU).lsrb, 1},
	ill,
	{"RORB", addrModeINH, (*CPU).rorb, 1},
	{"ASRB", addrModeINH, (*CPU).asrb, 1},
	{"ASLB", addrModeINH, (*CPU).aslb, 1},
	{"ROLB", addrModeINH, (*CPU).rolb, 1},
	{"DECB", addrModeINH, (*CPU).decb, 1},
	ill,
	{"INCB", addrModeINH, (*CPU).incb, 1},
	{"TSTB", addrModeINH, (*CPU).tstb, 1},
	ill,
	{"CLRB", addrModeINH, (*CPU).clrb, 1},
	// 0x60
	{"NEG", addrModeIDX, (*CPU).neg, 6},
	{"AIM", addrModeIMMIDX, (*CPU).aim, 7},
	{"OIM", addrModeIMMIDX, (*CPU).oim, 7},
	{"COM", addrModeIDX, (*CPU).com, 6},
	{"LSR", addrModeIDX, (*CPU).lsr, 6},
	{"EIM", addrModeIMMIDX, (*CPU).eim, 7},
	{"ROR", addrModeIDX, (*CPU).ror, 6},
	{"ASR", addrModeIDX, (*CPU).asr, 6},
	{"ASL", addrModeIDX, (*CPU).asl, 6},
	{"ROL", addrModeIDX, (*CPU).rol, 6},
	{"DEC", addrModeIDX, (*CPU).dec, 6},
	{"TIM", addrModeIMMIDX, (*CPU).tim, 5},
	{"INC", addrModeIDX, (*CPU).inc, 6},
	{"TST", addrModeIDX, (*CPU).tst, 4},
	{"JMP", addrModeIDX, (*CPU).jmp, 3},
	{"CLR", addrModeIDX, (*CPU).clr, 5},
	// 0x70
	{"NEG", addrModeEXT, (*CPU).neg, 6},
	{"AIM", addrModeIMMDIR, (*CPU).aim, 6},
	{"OIM", addrModeIMMDIR, (*CPU).oim, 6},
	{"COM", addrModeEXT, (*CPU).com, 6},
	{"LSR", addrModeEXT, (*CPU).lsr, 6},
	{"EIM", addrModeIMMDIR, (*CPU).eim, 6},
	{"ROR", addrModeEXT, (*CPU).ror, 6},
	{"ASR", addrModeEXT, (*CPU).asr, 6},
	{"ASL", addrModeEXT, (*CPU).asl, 6},
	{"ROL", addrModeEXT, (*CPU).rol, 6},
	{"DEC", addrModeEXT, (*CPU).dec, 6},
	{"TIM", addrModeIMMDIR, (*CPU).tim, 4},
	{"INC", addrModeEXT, (*CPU).inc, 6},
	{"TST", addrModeEXT, (*CPU).tst, 4},
	{"JMP", addrModeEXT, (*CPU).jmp, 3},
	{"CLR", addrModeEXT, (*CPU).clr, 5},
	// 0x80
	{"SUBA", addrModeIMM, (*CPU).suba, 2},
	{"CMPA", addrModeIMM, (*CPU).cmpa, 2},
	{"SBCA", addrModeIMM, (*CPU).sbca, 2},
	{"SUBD", addrModeIMM16, (*CPU).subd, 3},
	{"ANDA", addrModeIMM, (*CPU).anda, 2},
	{"BITA", addrModeIMM, (*CPU).bita, 2},
	{"LDAA", addrModeIMM, (*CPU).ldaa, 2},
	ill,
	{"EORA", addrModeIMM, (*CPU).eora, 2},
	{"ADCA", addrModeIMM, (*CPU).adca, 2},
	{"ORAA", addrModeIMM, (*CPU).oraa, 2},
	{"ADDA", addrModeIMM, (*CPU).adda, 2},
	{"CPX", addrModeIMM16, (*CPU).cpx, 3},
	{"BSR", addrModeREL, (*CPU).bsr, 5},
	{"LDS", addrModeIMM16, (*CPU).lds, 3},
	ill,
	// 0x90
	{"SUBA", addrModeDIR, (*CPU).suba, 3},
	{"CMPA", addrModeDIR, (*CPU).cmpa, 3},
	{"SBCA", addrModeDIR, (*CPU).sbca, 3},
	{"SUBD", addrModeDIR, (*CPU).subd, 4},
	{"ANDA", addrModeDIR, (*CPU).anda, 3},
	{"BITA", addrModeDIR, (*CPU).bita, 3},
	{"LDAA", addrModeDIR, (*CPU).ldaa, 3},
	{"STAA", addrModeDIR, (*CPU).staa, 3},
	{"EORA", addrModeDIR, (*CPU).eora, 3},
	{"ADCA", addrModeDIR, (*CPU).adca, 3},
	{"ORAA", addrModeDIR, (*CPU).oraa, 3},
	{"ADDA", addrModeDIR, (*CPU).adda, 3},
	{"CPX", addrModeDIR, (*CPU).cpx, 4},
	{"JSR", addrModeDIR, (*CPU).jsr, 5},
	{"LDS", addrModeDIR, (*CPU).lds, 4},
	{"STS", addrModeDIR, (*CPU).sts, 4},
	// 0xa0
	{"SUBA", addrModeIDX, (*CPU).suba, 4},
	{"CMPA", addrModeIDX, (*CPU).cmpa, 4},
	{"SBCA", addrModeIDX, (*CPU).sbca, 4},
	{"SUBD", addrModeIDX, (*CPU).subd, 5},
	{"ANDA", addrModeIDX, (*CPU).anda, 4},
	{"BITA", addrModeIDX, (*CPU).bita, 4},
	{"LDAA", addrModeIDX, (*CPU).ldaa, 4},
	{"STAA", addrModeIDX, (*CPU).staa, 4},
	{"EORA", addrModeIDX, (*CPU).eora, 4},
	{"ADCA", addrModeIDX, (*CPU).adca, 4},
	{"ORAA", addrModeIDX, (*CPU).oraa, 4},
	{"ADDA", addrModeIDX, (*CPU).adda, 4},
	{"CPX", addrModeIDX, (*CPU).cpx, 5},
	{"JSR", addrModeIDX, (*CPU).jsr, 5},
	{"LDS", addrModeIDX, (*CPU).lds, 5},
	{"STS", addrModeIDX, (*CPU).sts, 5},
	// 0xb0
	{"SUBA", addrModeEXT, (*CPU).suba, 4},
	{"CMPA", addrModeEXT, (*CPU).cmpa, 4},
	{"SBCA", addrModeEXT, (*CPU).sbca, 4},
	{"SUBD", addrModeEXT, (*CPU).subd, 5},
	{"ANDA", addrModeEXT, (*CPU).anda, 4},
	{"BITA", addrModeEXT, (*CPU).bita, 4},
	{"LDAA", addrModeEXT, (*CPU).ldaa, 4},
	{"STAA", addrModeEXT, (*CPU).staa, 4},
	{"EORA", addrModeEXT, (*CPU).eora, 4},
	{"ADCA", addrModeEXT, (*CPU).adca, 4},
	{"ORAA", addrModeEXT, (*CPU).oraa, 4},
	{"ADDA", addrModeEXT, (*CPU).adda, 4},
	{"CPX", addrModeEXT, (*CPU).cpx, 5},
	{"JSR", addrModeEXT, (*CPU).jsr, 6},
	{"LDS", addrModeEXT, (*CPU).lds, 5},
	{"STS", addrModeEXT, (*CPU).sts, 5},
	// 0xc0
	{"SUBB", addrModeIMM, (*CPU).subb, 2},
	{"CMPB", addrModeIMM, (*CPU).cmpb, 2},
	{"SBCB", addrModeIMM, (*CPU).sbcb, 2},
	{"ADDD", addrModeIMM16, (*CPU).addd, 3},
	{"ANDB", addrModeIMM, (*CPU).andb, 2},
	{"BITB", addrModeIMM, (*CPU).bitb, 2},
	{"LDAB", addrModeIMM, (*CPU).ldab, 2},
	ill,
	{"EORB", addrModeIMM, (*CPU).eorb, 2},
	{"ADCB", addrModeIMM, (*CPU).adcb, 2},
	{"ORAB", addrModeIMM, (*CPU).orab, 2},
	{"ADDB", addrModeIMM, (*CPU).addb, 2},
	{"LDD", addrModeIMM16, (*CPU).ldd, 3},
	ill,
	{"LDX", addrModeIMM16, (*CPU).ldx, 3},
	ill,
	// 0xd0
	{"SUBB", addrModeDIR, (*CPU).subb, 3},
	{"CMPB", addrModeDIR, (*CPU).cmpb, 3},
	{"SBCB", addrModeDIR, (*CPU).sbcb, 3},
	{"ADDD", addrModeDIR, (*CPU).addd, 4},
	{"ANDB", addrModeDIR, (*CPU).andb, 3},
	{"BITB", addrModeDIR, (*CPU).bitb, 3},
	{"LDAB", addrModeDIR, (*CPU).ldab, 3},
	{"STAB", addrModeDIR, (*CPU).stab, 3},
	{"EORB", addrModeDIR, (*CPU).eorb, 3},
	{"ADCB", addrModeDIR, (*CPU).adcb, 3},
	{"ORAB", addrModeDIR, (*CPU).orab, 3},
	{"ADDB", addrModeDIR, (*CPU).addb, 3},
	{"LDD", addrModeDIR, (*CPU).ldd, 4},
	{"STD", addrModeDIR, (*CPU).std, 4},
	{"LDX", addrModeDIR, (*CPU).ldx, 4},
	{"STX", addrModeDIR, (*CPU).stx, 4},
	// 0xe0
	{"SUBB", addrModeIDX, (*CPU).subb, 4},
	{"CMPB", addrModeIDX, (*CPU).cmpb, 4},
	{"SBCB", addrModeIDX, (*CPU).sbcb, 4},
	{"ADDD", addrModeIDX, (*CPU).addd, 5},
	{"ANDB", addrModeIDX, (*CPU).andb, 4},
	{"BITB", addrModeIDX, (*CPU).bitb, 4},
	{"LDAB", addrModeIDX, (*CPU).ldab, 4},
	{"STAB", addrModeIDX, (*CPU).stab, 4},
	{"EORB", addrModeIDX, (*CPU).eorb, 4},
	{"ADCB", addrModeIDX, (*CPU).adcb, 4},
	{"ORAB", addrModeIDX, (*CPU).orab, 4},
	{"ADDB", addrModeIDX, (*CPU).addb, 4},
	{"LDD", addrModeIDX, (*CPU).ldd, 5},
	{"STD", addrModeIDX, (*CPU).std, 5},
	{"LDX", addrModeIDX, (*CPU).ldx, 5},
	{"STX", addrModeIDX, (*CPU).stx, 5},
	// 0xf0
	{"SUBB", addrModeEXT, (*CPU).subb, 4},
	{"CMPB", addrModeEXT, (*CPU).cmpb, 4},
	{"SBCB", addrModeEXT, (*CPU).sbcb, 4},
	{"ADDD", addrModeEXT, (*CPU).addd, 5},
	{"ANDB", addrModeEXT, (*CPU).andb, 4},
	{"BITB", addrModeEXT, (*CPU).bitb, 4},
	{"LDAB", addrModeEXT, (*CPU).ldab, 4},
	{"STAB", addrModeEXT, (*CPU).stab, 4},
	{"EORB", addrModeEXT, (*CPU).eorb, 4},
	{"ADCB", addrModeEXT, (*CPU).adcb, 4},
	{"ORAB", addrModeEXT, (*CPU).orab, 4},
	{"ADDB", addrModeEXT, (*CPU).addb, 4},
	{"LDD", addrModeEXT, (*CPU).ldd, 5},
	{"STD", addrModeEXT, (*CPU).std, 5},
	{"LDX", addrModeEXT, (*CPU).ldx, 5},
	{"STX", addrModeEXT, (*CPU).stx, 5},
}

// The table must cover every opcode byte; a missing or extra row
// fails to compile here.
var _ [0x100]instr = opcodes

// IsLegal reports whether opcode decodes to a documented instruction.
func IsLegal(opcode uint8) bool {
	return opcodes[opcode].cycles != 0
}
