package cpu

// ALU primitives shared by the accumulator, memory and 16-bit forms.

func (c *CPU) add8(a, m, carry uint8) uint8 {
	r16 := uint16(a) + uint16(m) + uint16(carry)
	r := uint8(r16)
	c.setFlag(flagH, (a^m^r)&0x10 > 0)
	c.setFlagsNZ8(r)
	c.setFlag(flagV, (a^r)&^(a^m)&0x80 > 0)
	c.setFlag(flagC, r16 > 0xff)
	return r
}

func (c *CPU) sub8(a, m, borrow uint8) uint8 {
	r := a - m - borrow
	c.setFlagsNZ8(r)
	c.setFlag(flagV, (a^m)&(a^r)&0x80 > 0)
	c.setFlag(flagC, uint16(m)+uint16(borrow) > uint16(a))
	return r
}

func (c *CPU) add16(a, m uint16) uint16 {
	r32 := uint32(a) + uint32(m)
	r := uint16(r32)
	c.setFlagsNZ16(r)
	c.setFlag(flagV, (a^r)&^(a^m)&0x8000 > 0)
	c.setFlag(flagC, r32 > 0xffff)
	return r
}

func (c *CPU) sub16(a, m uint16) uint16 {
	r := a - m
	c.setFlagsNZ16(r)
	c.setFlag(flagV, (a^m)&(a^r)&0x8000 > 0)
	c.setFlag(flagC, m > a)
	return r
}

func (c *CPU) logic8(r uint8) uint8 {
	c.setFlagsNZ8(r)
	c.setFlag(flagV, false)
	return r
}

// V after a shift or rotate is N xor C.
func (c *CPU) shiftFlags8(r uint8, carry bool) uint8 {
	c.setFlag(flagC, carry)
	c.setFlagsNZ8(r)
	c.setFlag(flagV, c.getFlag(flagN) != carry)
	return r
}

func (c *CPU) neg8(m uint8) uint8 {
	r := -m
	c.setFlagsNZ8(r)
	c.setFlag(flagV, r == 0x80)
	c.setFlag(flagC, r != 0)
	return r
}

func (c *CPU) com8(m uint8) uint8 {
	c.setFlag(flagC, true)
	return c.logic8(^m)
}

func (c *CPU) lsr8(m uint8) uint8 {
	return c.shiftFlags8(m>>1, m&0x01 > 0)
}

func (c *CPU) ror8(m uint8) uint8 {
	return c.shiftFlags8(m>>1|c.carry()<<7, m&0x01 > 0)
}

func (c *CPU) asr8(m uint8) uint8 {
	return c.shiftFlags8(m>>1|m&0x80, m&0x01 > 0)
}

func (c *CPU) asl8(m uint8) uint8 {
	return c.shiftFlags8(m<<1, m&0x80 > 0)
}

func (c *CPU) rol8(m uint8) uint8 {
	return c.shiftFlags8(m<<1|c.carry(), m&0x80 > 0)
}

func (c *CPU) dec8(m uint8) uint8 {
	r := m - 1
	c.setFlagsNZ8(r)
	c.setFlag(flagV, m == 0x80)
	return r
}

func (c *CPU) inc8(m uint8) uint8 {
	r := m + 1
	c.setFlagsNZ8(r)
	c.setFlag(flagV, m == 0x7f)
	return r
}

func (c *CPU) tst8(m uint8) {
	c.logic8(m)
	c.setFlag(flagC, false)
}

func (c *CPU) clr8() uint8 {
	c.setFlag(flagC, false)
	return c.logic8(0)
}

// rmw applies op to the byte at the effective address.
func (c *CPU) rmw(op func(*CPU, uint8) uint8) {
	c.write8(c.operandAddr, op(c, c.load8()))
}

func (c *CPU) branchIf(condition bool) {
	if condition {
		c.pc += c.operandAddr
	}
}

// Illegal opcodes stop decoding. The firmware never executes them,
// so reaching one means the program went astray.
func (c *CPU) illegal() {
	c.halt(c.opcodePC, c.opcode, "illegal opcode")
}

// Inherent

func (c *CPU) nop() {}

func (c *CPU) lsrd() {
	d := c.d()
	r := d >> 1
	c.setD(r)
	c.setFlag(flagC, d&0x01 > 0)
	c.setFlagsNZ16(r)
	c.setFlag(flagV, c.getFlag(flagC))
}

func (c *CPU) asld() {
	d := c.d()
	r := d << 1
	c.setD(r)
	c.setFlag(flagC, d&0x8000 > 0)
	c.setFlagsNZ16(r)
	c.setFlag(flagV, c.getFlag(flagN) != c.getFlag(flagC))
}

func (c *CPU) tap() { c.ccr = c.a | ccrFixed }
func (c *CPU) tpa() { c.a = c.ccr }

func (c *CPU) inx() {
	c.x++
	c.setFlag(flagZ, c.x == 0)
}

func (c *CPU) dex() {
	c.x--
	c.setFlag(flagZ, c.x == 0)
}

func (c *CPU) clv() { c.setFlag(flagV, false) }
func (c *CPU) sev() { c.setFlag(flagV, true) }
func (c *CPU) clc() { c.setFlag(flagC, false) }
func (c *CPU) sec() { c.setFlag(flagC, true) }
func (c *CPU) cli() { c.setFlag(flagI, false) }
func (c *CPU) sei() { c.setFlag(flagI, true) }

func (c *CPU) sba() { c.a = c.sub8(c.a, c.b, 0) }
func (c *CPU) cba() { c.sub8(c.a, c.b, 0) }
func (c *CPU) aba() { c.a = c.add8(c.a, c.b, 0) }
func (c *CPU) tab() { c.b = c.logic8(c.a) }
func (c *CPU) tba() { c.a = c.logic8(c.b) }

func (c *CPU) xgdx() {
	d := c.d()
	c.setD(c.x)
	c.x = d
}

// Decimal adjust A after a BCD addition.
func (c *CPU) daa() {
	a := c.a
	correction := uint8(0)
	carry := c.getFlag(flagC)
	if c.getFlag(flagH) || a&0x0f > 0x09 {
		correction |= 0x06
	}
	if carry || a > 0x99 || (a > 0x89 && a&0x0f > 0x09) {
		correction |= 0x60
		carry = true
	}
	r16 := uint16(a) + uint16(correction)
	c.a = uint8(r16)
	c.setFlagsNZ8(c.a)
	c.setFlag(flagV, (a^c.a)&^(a^correction)&0x80 > 0)
	c.setFlag(flagC, carry || r16 > 0xff)
}

func (c *CPU) slp() { c.state = stateSleeping }

func (c *CPU) tsx() { c.x = c.sp + 1 }
func (c *CPU) txs() { c.sp = c.x - 1 }
func (c *CPU) ins() { c.sp++ }
func (c *CPU) des() { c.sp-- }

func (c *CPU) pula() { c.a = c.stackPop8() }
func (c *CPU) pulb() { c.b = c.stackPop8() }
func (c *CPU) psha() { c.stackPush8(c.a) }
func (c *CPU) pshb() { c.stackPush8(c.b) }
func (c *CPU) pulx() { c.x = c.stackPop16() }
func (c *CPU) pshx() { c.stackPush16(c.x) }

func (c *CPU) rts() { c.pc = c.stackPop16() }

func (c *CPU) abx() { c.x += uint16(c.b) }

func (c *CPU) rti() {
	c.pullAll()
	if c.irq != nil {
		c.irq.Return()
	}
}

func (c *CPU) mul() {
	c.setD(uint16(c.a) * uint16(c.b))
	c.setFlag(flagC, c.b&0x80 > 0)
}

func (c *CPU) wai() {
	c.pushAll()
	c.state = stateWaiting
}

// swi is a software entry; it is recorded with the controller so the
// handler's RTI unwinds it.
func (c *CPU) swi() {
	c.interrupt(VectorSWI)
}

// Accumulator A and B single operand forms

func (c *CPU) nega() { c.a = c.neg8(c.a) }
func (c *CPU) coma() { c.a = c.com8(c.a) }
func (c *CPU) lsra() { c.a = c.lsr8(c.a) }
func (c *CPU) rora() { c.a = c.ror8(c.a) }
func (c *CPU) asra() { c.a = c.asr8(c.a) }
func (c *CPU) asla() { c.a = c.asl8(c.a) }
func (c *CPU) rola() { c.a = c.rol8(c.a) }
func (c *CPU) deca() { c.a = c.dec8(c.a) }
func (c *CPU) inca() { c.a = c.inc8(c.a) }
func (c *CPU) tsta() { c.tst8(c.a) }
func (c *CPU) clra() { c.a = c.clr8() }

func (c *CPU) negb() { c.b = c.neg8(c.b) }
func (c *CPU) comb() { c.b = c.com8(c.b) }
func (c *CPU) lsrb() { c.b = c.lsr8(c.b) }
func (c *CPU) rorb() { c.b = c.ror8(c.b) }
func (c *CPU) asrb() { c.b = c.asr8(c.b) }
func (c *CPU) aslb() { c.b = c.asl8(c.b) }
func (c *CPU) rolb() { c.b = c.rol8(c.b) }
func (c *CPU) decb() { c.b = c.dec8(c.b) }
func (c *CPU) incb() { c.b = c.inc8(c.b) }
func (c *CPU) tstb() { c.tst8(c.b) }
func (c *CPU) clrb() { c.b = c.clr8() }

// Memory single operand forms

func (c *CPU) neg() { c.rmw((*CPU).neg8) }
func (c *CPU) com() { c.rmw((*CPU).com8) }
func (c *CPU) lsr() { c.rmw((*CPU).lsr8) }
func (c *CPU) ror() { c.rmw((*CPU).ror8) }
func (c *CPU) asr() { c.rmw((*CPU).asr8) }
func (c *CPU) asl() { c.rmw((*CPU).asl8) }
func (c *CPU) rol() { c.rmw((*CPU).rol8) }
func (c *CPU) dec() { c.rmw((*CPU).dec8) }
func (c *CPU) inc() { c.rmw((*CPU).inc8) }
func (c *CPU) tst() { c.tst8(c.load8()) }
func (c *CPU) clr() { c.write8(c.operandAddr, c.clr8()) }
func (c *CPU) jmp() { c.pc = c.operandAddr }

// Bit manipulation: immediate byte combined with memory.

func (c *CPU) aim() { c.write8(c.operandAddr, c.logic8(c.imm&c.load8())) }
func (c *CPU) oim() { c.write8(c.operandAddr, c.logic8(c.imm|c.load8())) }
func (c *CPU) eim() { c.write8(c.operandAddr, c.logic8(c.imm^c.load8())) }
func (c *CPU) tim() { c.logic8(c.imm & c.load8()) }

// Branches

func (c *CPU) nxorv() bool { return c.getFlag(flagN) != c.getFlag(flagV) }

func (c *CPU) bra() { c.branchIf(true) }
func (c *CPU) brn() { c.branchIf(false) }
func (c *CPU) bhi() { c.branchIf(!c.getFlag(flagC) && !c.getFlag(flagZ)) }
func (c *CPU) bls() { c.branchIf(c.getFlag(flagC) || c.getFlag(flagZ)) }
func (c *CPU) bcc() { c.branchIf(!c.getFlag(flagC)) }
func (c *CPU) bcs() { c.branchIf(c.getFlag(flagC)) }
func (c *CPU) bne() { c.branchIf(!c.getFlag(flagZ)) }
func (c *CPU) beq() { c.branchIf(c.getFlag(flagZ)) }
func (c *CPU) bvc() { c.branchIf(!c.getFlag(flagV)) }
func (c *CPU) bvs() { c.branchIf(c.getFlag(flagV)) }
func (c *CPU) bpl() { c.branchIf(!c.getFlag(flagN)) }
func (c *CPU) bmi() { c.branchIf(c.getFlag(flagN)) }
func (c *CPU) bge() { c.branchIf(!c.nxorv()) }
func (c *CPU) blt() { c.branchIf(c.nxorv()) }
func (c *CPU) bgt() { c.branchIf(!c.getFlag(flagZ) && !c.nxorv()) }
func (c *CPU) ble() { c.branchIf(c.getFlag(flagZ) || c.nxorv()) }

func (c *CPU) bsr() {
	c.stackPush16(c.pc)
	c.pc += c.operandAddr
}

func (c *CPU) jsr() {
	c.stackPush16(c.pc)
	c.pc = c.operandAddr
}

// Accumulator with memory operand

func (c *CPU) suba() { c.a = c.sub8(c.a, c.load8(), 0) }
func (c *CPU) cmpa() { c.sub8(c.a, c.load8(), 0) }
func (c *CPU) sbca() { c.a = c.sub8(c.a, c.load8(), c.carry()) }
func (c *CPU) anda() { c.a = c.logic8(c.a & c.load8()) }
func (c *CPU) bita() { c.logic8(c.a & c.load8()) }
func (c *CPU) ldaa() { c.a = c.logic8(c.load8()) }
func (c *CPU) staa() { c.write8(c.operandAddr, c.logic8(c.a)) }
func (c *CPU) eora() { c.a = c.logic8(c.a ^ c.load8()) }
func (c *CPU) adca() { c.a = c.add8(c.a, c.load8(), c.carry()) }
func (c *CPU) oraa() { c.a = c.logic8(c.a | c.load8()) }
func (c *CPU) adda() { c.a = c.add8(c.a, c.load8(), 0) }

func (c *CPU) subb() { c.b = c.sub8(c.b, c.load8(), 0) }
func (c *CPU) cmpb() { c.sub8(c.b, c.load8(), 0) }
func (c *CPU) sbcb() { c.b = c.sub8(c.b, c.load8(), c.carry()) }
func (c *CPU) andb() { c.b = c.logic8(c.b & c.load8()) }
func (c *CPU) bitb() { c.logic8(c.b & c.load8()) }
func (c *CPU) ldab() { c.b = c.logic8(c.load8()) }
func (c *CPU) stab() { c.write8(c.operandAddr, c.logic8(c.b)) }
func (c *CPU) eorb() { c.b = c.logic8(c.b ^ c.load8()) }
func (c *CPU) adcb() { c.b = c.add8(c.b, c.load8(), c.carry()) }
func (c *CPU) orab() { c.b = c.logic8(c.b | c.load8()) }
func (c *CPU) addb() { c.b = c.add8(c.b, c.load8(), 0) }

// 16-bit

func (c *CPU) subd() { c.setD(c.sub16(c.d(), c.load16())) }
func (c *CPU) addd() { c.setD(c.add16(c.d(), c.load16())) }
func (c *CPU) cpx()  { c.sub16(c.x, c.load16()) }

func (c *CPU) load16Flags() uint16 {
	v := c.load16()
	c.setFlagsNZ16(v)
	c.setFlag(flagV, false)
	return v
}

func (c *CPU) store16(v uint16) {
	c.setFlagsNZ16(v)
	c.setFlag(flagV, false)
	c.write16(c.operandAddr, v)
}

func (c *CPU) ldd() { c.setD(c.load16Flags()) }
func (c *CPU) ldx() { c.x = c.load16Flags() }
func (c *CPU) lds() { c.sp = c.load16Flags() }
func (c *CPU) std() { c.store16(c.d()) }
func (c *CPU) stx() { c.store16(c.x) }
func (c *CPU) sts() { c.store16(c.sp) }
