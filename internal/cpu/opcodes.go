package cpu

// dispatch executes one primary-table opcode. Memory accesses charge their
// cycles through the bus; taken branches and 16-bit arithmetic charge the
// extra internal cycle explicitly.
func (c *CPU) dispatch(op byte) {
	switch op {
	case 0x00: // NOP
	case 0x01:
		c.setBC(c.fetch16())
	case 0x02:
		c.write8(c.getBC(), c.A)
	case 0x03:
		c.setBC(c.getBC() + 1)
		c.internalStep()
	case 0x04:
		c.B = c.inc(c.B)
	case 0x05:
		c.B = c.dec(c.B)
	case 0x06:
		c.B = c.fetch8()
	case 0x07: // RLCA
		c.A = c.rlc(c.A)
		c.setFlag(flagZ, false)
	case 0x08: // LD (a16),SP
		addr := c.fetch16()
		c.write16(addr, c.SP)
	case 0x09:
		c.addHL(c.getBC())
	case 0x0A:
		c.A = c.read8(c.getBC())
	case 0x0B:
		c.setBC(c.getBC() - 1)
		c.internalStep()
	case 0x0C:
		c.C = c.inc(c.C)
	case 0x0D:
		c.C = c.dec(c.C)
	case 0x0E:
		c.C = c.fetch8()
	case 0x0F: // RRCA
		c.A = c.rrc(c.A)
		c.setFlag(flagZ, false)

	case 0x10: // STOP consumes its operand byte; on CGB it commits an
		// armed speed switch
		_ = c.fetch8()
		if c.cgb && c.bus.SpeedSwitchArmed() {
			c.bus.SwitchSpeed()
		}
	case 0x11:
		c.setDE(c.fetch16())
	case 0x12:
		c.write8(c.getDE(), c.A)
	case 0x13:
		c.setDE(c.getDE() + 1)
		c.internalStep()
	case 0x14:
		c.D = c.inc(c.D)
	case 0x15:
		c.D = c.dec(c.D)
	case 0x16:
		c.D = c.fetch8()
	case 0x17: // RLA
		c.A = c.rl(c.A)
		c.setFlag(flagZ, false)
	case 0x18:
		c.jumpRelative(true)
	case 0x19:
		c.addHL(c.getDE())
	case 0x1A:
		c.A = c.read8(c.getDE())
	case 0x1B:
		c.setDE(c.getDE() - 1)
		c.internalStep()
	case 0x1C:
		c.E = c.inc(c.E)
	case 0x1D:
		c.E = c.dec(c.E)
	case 0x1E:
		c.E = c.fetch8()
	case 0x1F: // RRA
		c.A = c.rr(c.A)
		c.setFlag(flagZ, false)

	case 0x20:
		c.jumpRelative(!c.flag(flagZ))
	case 0x21:
		c.setHL(c.fetch16())
	case 0x22: // LD (HL+),A
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl + 1)
	case 0x23:
		c.setHL(c.getHL() + 1)
		c.internalStep()
	case 0x24:
		c.H = c.inc(c.H)
	case 0x25:
		c.H = c.dec(c.H)
	case 0x26:
		c.H = c.fetch8()
	case 0x27:
		c.daa()
	case 0x28:
		c.jumpRelative(c.flag(flagZ))
	case 0x29:
		c.addHL(c.getHL())
	case 0x2A: // LD A,(HL+)
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl + 1)
	case 0x2B:
		c.setHL(c.getHL() - 1)
		c.internalStep()
	case 0x2C:
		c.L = c.inc(c.L)
	case 0x2D:
		c.L = c.dec(c.L)
	case 0x2E:
		c.L = c.fetch8()
	case 0x2F: // CPL
		c.A = ^c.A
		c.setFlag(flagN, true)
		c.setFlag(flagH, true)

	case 0x30:
		c.jumpRelative(!c.flag(flagC))
	case 0x31:
		c.SP = c.fetch16()
	case 0x32: // LD (HL-),A
		hl := c.getHL()
		c.write8(hl, c.A)
		c.setHL(hl - 1)
	case 0x33:
		c.SP++
		c.internalStep()
	case 0x34: // INC (HL)
		addr := c.getHL()
		c.write8(addr, c.inc(c.read8(addr)))
	case 0x35: // DEC (HL)
		addr := c.getHL()
		c.write8(addr, c.dec(c.read8(addr)))
	case 0x36: // LD (HL),d8
		v := c.fetch8()
		c.write8(c.getHL(), v)
	case 0x37: // SCF
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, true)
	case 0x38:
		c.jumpRelative(c.flag(flagC))
	case 0x39:
		c.addHL(c.SP)
	case 0x3A: // LD A,(HL-)
		hl := c.getHL()
		c.A = c.read8(hl)
		c.setHL(hl - 1)
	case 0x3B:
		c.SP--
		c.internalStep()
	case 0x3C:
		c.A = c.inc(c.A)
	case 0x3D:
		c.A = c.dec(c.A)
	case 0x3E:
		c.A = c.fetch8()
	case 0x3F: // CCF
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, !c.flag(flagC))

	// LD r,r' block
	case 0x40:
		// LD B,B
	case 0x41:
		c.B = c.C
	case 0x42:
		c.B = c.D
	case 0x43:
		c.B = c.E
	case 0x44:
		c.B = c.H
	case 0x45:
		c.B = c.L
	case 0x46:
		c.B = c.read8(c.getHL())
	case 0x47:
		c.B = c.A
	case 0x48:
		c.C = c.B
	case 0x49:
		// LD C,C
	case 0x4A:
		c.C = c.D
	case 0x4B:
		c.C = c.E
	case 0x4C:
		c.C = c.H
	case 0x4D:
		c.C = c.L
	case 0x4E:
		c.C = c.read8(c.getHL())
	case 0x4F:
		c.C = c.A

	case 0x50:
		c.D = c.B
	case 0x51:
		c.D = c.C
	case 0x52:
		// LD D,D
	case 0x53:
		c.D = c.E
	case 0x54:
		c.D = c.H
	case 0x55:
		c.D = c.L
	case 0x56:
		c.D = c.read8(c.getHL())
	case 0x57:
		c.D = c.A
	case 0x58:
		c.E = c.B
	case 0x59:
		c.E = c.C
	case 0x5A:
		c.E = c.D
	case 0x5B:
		// LD E,E
	case 0x5C:
		c.E = c.H
	case 0x5D:
		c.E = c.L
	case 0x5E:
		c.E = c.read8(c.getHL())
	case 0x5F:
		c.E = c.A

	case 0x60:
		c.H = c.B
	case 0x61:
		c.H = c.C
	case 0x62:
		c.H = c.D
	case 0x63:
		c.H = c.E
	case 0x64:
		// LD H,H
	case 0x65:
		c.H = c.L
	case 0x66:
		c.H = c.read8(c.getHL())
	case 0x67:
		c.H = c.A
	case 0x68:
		c.L = c.B
	case 0x69:
		c.L = c.C
	case 0x6A:
		c.L = c.D
	case 0x6B:
		c.L = c.E
	case 0x6C:
		c.L = c.H
	case 0x6D:
		// LD L,L
	case 0x6E:
		c.L = c.read8(c.getHL())
	case 0x6F:
		c.L = c.A

	case 0x70:
		c.write8(c.getHL(), c.B)
	case 0x71:
		c.write8(c.getHL(), c.C)
	case 0x72:
		c.write8(c.getHL(), c.D)
	case 0x73:
		c.write8(c.getHL(), c.E)
	case 0x74:
		c.write8(c.getHL(), c.H)
	case 0x75:
		c.write8(c.getHL(), c.L)
	case 0x76: // HALT
		c.halted = true
	case 0x77:
		c.write8(c.getHL(), c.A)
	case 0x78:
		c.A = c.B
	case 0x79:
		c.A = c.C
	case 0x7A:
		c.A = c.D
	case 0x7B:
		c.A = c.E
	case 0x7C:
		c.A = c.H
	case 0x7D:
		c.A = c.L
	case 0x7E:
		c.A = c.read8(c.getHL())
	case 0x7F:
		// LD A,A

	case 0x80:
		c.add(c.B)
	case 0x81:
		c.add(c.C)
	case 0x82:
		c.add(c.D)
	case 0x83:
		c.add(c.E)
	case 0x84:
		c.add(c.H)
	case 0x85:
		c.add(c.L)
	case 0x86:
		c.add(c.read8(c.getHL()))
	case 0x87:
		c.add(c.A)
	case 0x88:
		c.adc(c.B)
	case 0x89:
		c.adc(c.C)
	case 0x8A:
		c.adc(c.D)
	case 0x8B:
		c.adc(c.E)
	case 0x8C:
		c.adc(c.H)
	case 0x8D:
		c.adc(c.L)
	case 0x8E:
		c.adc(c.read8(c.getHL()))
	case 0x8F:
		c.adc(c.A)

	case 0x90:
		c.sub(c.B)
	case 0x91:
		c.sub(c.C)
	case 0x92:
		c.sub(c.D)
	case 0x93:
		c.sub(c.E)
	case 0x94:
		c.sub(c.H)
	case 0x95:
		c.sub(c.L)
	case 0x96:
		c.sub(c.read8(c.getHL()))
	case 0x97:
		c.sub(c.A)
	case 0x98:
		c.sbc(c.B)
	case 0x99:
		c.sbc(c.C)
	case 0x9A:
		c.sbc(c.D)
	case 0x9B:
		c.sbc(c.E)
	case 0x9C:
		c.sbc(c.H)
	case 0x9D:
		c.sbc(c.L)
	case 0x9E:
		c.sbc(c.read8(c.getHL()))
	case 0x9F:
		c.sbc(c.A)

	case 0xA0:
		c.and(c.B)
	case 0xA1:
		c.and(c.C)
	case 0xA2:
		c.and(c.D)
	case 0xA3:
		c.and(c.E)
	case 0xA4:
		c.and(c.H)
	case 0xA5:
		c.and(c.L)
	case 0xA6:
		c.and(c.read8(c.getHL()))
	case 0xA7:
		c.and(c.A)
	case 0xA8:
		c.xor(c.B)
	case 0xA9:
		c.xor(c.C)
	case 0xAA:
		c.xor(c.D)
	case 0xAB:
		c.xor(c.E)
	case 0xAC:
		c.xor(c.H)
	case 0xAD:
		c.xor(c.L)
	case 0xAE:
		c.xor(c.read8(c.getHL()))
	case 0xAF:
		c.xor(c.A)

	case 0xB0:
		c.or(c.B)
	case 0xB1:
		c.or(c.C)
	case 0xB2:
		c.or(c.D)
	case 0xB3:
		c.or(c.E)
	case 0xB4:
		c.or(c.H)
	case 0xB5:
		c.or(c.L)
	case 0xB6:
		c.or(c.read8(c.getHL()))
	case 0xB7:
		c.or(c.A)
	case 0xB8:
		c.cp(c.B)
	case 0xB9:
		c.cp(c.C)
	case 0xBA:
		c.cp(c.D)
	case 0xBB:
		c.cp(c.E)
	case 0xBC:
		c.cp(c.H)
	case 0xBD:
		c.cp(c.L)
	case 0xBE:
		c.cp(c.read8(c.getHL()))
	case 0xBF:
		c.cp(c.A)

	case 0xC0:
		c.retCond(!c.flag(flagZ))
	case 0xC1:
		c.setBC(c.pop16())
	case 0xC2:
		c.jump(!c.flag(flagZ))
	case 0xC3:
		c.jump(true)
	case 0xC4:
		c.callCond(!c.flag(flagZ))
	case 0xC5:
		c.internalStep()
		c.push16(c.getBC())
	case 0xC6:
		c.add(c.fetch8())
	case 0xC7:
		c.call(0x00)
	case 0xC8:
		c.retCond(c.flag(flagZ))
	case 0xC9:
		c.ret()
	case 0xCA:
		c.jump(c.flag(flagZ))
	case 0xCC:
		c.callCond(c.flag(flagZ))
	case 0xCD:
		addr := c.fetch16()
		c.call(addr)
	case 0xCE:
		c.adc(c.fetch8())
	case 0xCF:
		c.call(0x08)

	case 0xD0:
		c.retCond(!c.flag(flagC))
	case 0xD1:
		c.setDE(c.pop16())
	case 0xD2:
		c.jump(!c.flag(flagC))
	case 0xD4:
		c.callCond(!c.flag(flagC))
	case 0xD5:
		c.internalStep()
		c.push16(c.getDE())
	case 0xD6:
		c.sub(c.fetch8())
	case 0xD7:
		c.call(0x10)
	case 0xD8:
		c.retCond(c.flag(flagC))
	case 0xD9: // RETI
		c.ret()
		c.IME = true
	case 0xDA:
		c.jump(c.flag(flagC))
	case 0xDC:
		c.callCond(c.flag(flagC))
	case 0xDE:
		c.sbc(c.fetch8())
	case 0xDF:
		c.call(0x18)

	case 0xE0: // LDH (a8),A
		port := c.fetch8()
		c.write8(0xFF00+uint16(port), c.A)
	case 0xE1:
		c.setHL(c.pop16())
	case 0xE2:
		c.write8(0xFF00+uint16(c.C), c.A)
	case 0xE5:
		c.internalStep()
		c.push16(c.getHL())
	case 0xE6:
		c.and(c.fetch8())
	case 0xE7:
		c.call(0x20)
	case 0xE8: // ADD SP,e8
		c.SP = c.addSP(c.fetch8())
		c.internalStep()
		c.internalStep()
	case 0xE9: // JP HL
		c.PC = c.getHL()
	case 0xEA:
		addr := c.fetch16()
		c.write8(addr, c.A)
	case 0xEE:
		c.xor(c.fetch8())
	case 0xEF:
		c.call(0x28)

	case 0xF0: // LDH A,(a8)
		port := c.fetch8()
		c.A = c.read8(0xFF00 + uint16(port))
	case 0xF1: // POP AF masks the flag low nibble
		c.setAF(c.pop16() & 0xFFF0)
	case 0xF2:
		c.A = c.read8(0xFF00 + uint16(c.C))
	case 0xF3: // DI
		c.IME = false
		c.eiDelay = false
	case 0xF5:
		c.internalStep()
		c.push16(c.getAF())
	case 0xF6:
		c.or(c.fetch8())
	case 0xF7:
		c.call(0x30)
	case 0xF8: // LD HL,SP+e8
		c.setHL(c.addSP(c.fetch8()))
		c.internalStep()
	case 0xF9:
		c.SP = c.getHL()
		c.internalStep()
	case 0xFA:
		addr := c.fetch16()
		c.A = c.read8(addr)
	case 0xFB: // EI takes effect after the next instruction
		c.eiDelay = true
	case 0xFE:
		c.cp(c.fetch8())
	case 0xFF:
		c.call(0x38)

	default:
		// 0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD
		c.invalidOp(op)
	}
}

// dispatchCB executes one CB-prefixed opcode.
func (c *CPU) dispatchCB(op byte) {
	reg := op & 0x07
	group := op >> 6
	n := (op >> 3) & 0x07

	var v byte
	switch reg {
	case 0:
		v = c.B
	case 1:
		v = c.C
	case 2:
		v = c.D
	case 3:
		v = c.E
	case 4:
		v = c.H
	case 5:
		v = c.L
	case 6:
		v = c.read8(c.getHL())
	case 7:
		v = c.A
	}

	writeback := true
	switch group {
	case 0:
		switch n {
		case 0:
			v = c.rlc(v)
		case 1:
			v = c.rrc(v)
		case 2:
			v = c.rl(v)
		case 3:
			v = c.rr(v)
		case 4:
			v = c.sla(v)
		case 5:
			v = c.sra(v)
		case 6:
			v = c.swap(v)
		case 7:
			v = c.srl(v)
		}
	case 1:
		v = c.bit(n, v)
		writeback = false
	case 2:
		v = c.res(n, v)
	case 3:
		v = c.set(n, v)
	}

	if !writeback {
		return
	}
	switch reg {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.getHL(), v)
	case 7:
		c.A = v
	}
}
