package cpu

// Flag computation for the arithmetic and logic instructions. Each helper
// updates only the flags its instruction defines.

func bit7(v uint8) bool {
	return v&0x80 != 0
}

// add computes a + b + carry.
func (fl *Flags) add(a, b uint8, carry bool) (r uint8) {
	r = a + b
	if carry {
		r++
	}

	c := a&b | b&^r | ^r&a
	fl.set(FLAG_H, c&0x08 != 0)
	fl.set(FLAG_C, c&0x80 != 0)
	fl.set(FLAG_V, (a&b&^r|^a&^b&r)&0x80 != 0)
	fl.setNZS(r)

	return
}

// sub computes a - b - carry. With keepZ, Z is only kept set, as for the
// multi-byte compare and subtract instructions.
func (fl *Flags) sub(a, b uint8, carry bool, keepZ bool) (r uint8) {
	r = a - b
	if carry {
		r--
	}

	c := ^a&b | b&r | r&^a
	fl.set(FLAG_H, c&0x08 != 0)
	fl.set(FLAG_C, c&0x80 != 0)
	fl.set(FLAG_V, (a&^b&^r|^a&b&r)&0x80 != 0)

	z := fl.Has(FLAG_Z)
	fl.setNZS(r)
	if keepZ {
		fl.set(FLAG_Z, z && r == 0)
	}

	return
}

// logic sets the flags of AND, OR and EOR and their immediate forms.
func (fl *Flags) logic(r uint8) uint8 {
	fl.set(FLAG_V, false)
	fl.setNZS(r)
	return r
}

func (fl *Flags) com(a uint8) (r uint8) {
	r = ^a
	fl.set(FLAG_C, true)
	fl.set(FLAG_V, false)
	fl.setNZS(r)
	return
}

func (fl *Flags) neg(a uint8) (r uint8) {
	r = -a
	fl.set(FLAG_H, (r|a)&0x08 != 0)
	fl.set(FLAG_V, r == 0x80)
	fl.set(FLAG_C, r != 0)
	fl.setNZS(r)
	return
}

func (fl *Flags) inc(a uint8) (r uint8) {
	r = a + 1
	fl.set(FLAG_V, r == 0x80)
	fl.setNZS(r)
	return
}

func (fl *Flags) dec(a uint8) (r uint8) {
	r = a - 1
	fl.set(FLAG_V, r == 0x7f)
	fl.setNZS(r)
	return
}

// shift sets the flags of ASR, LSR and ROR, given the result and the bit
// shifted out.
func (fl *Flags) shift(r uint8, out bool) uint8 {
	fl.set(FLAG_C, out)
	fl.set(FLAG_N, bit7(r))
	fl.set(FLAG_Z, r == 0)
	fl.set(FLAG_V, fl.Has(FLAG_N) != fl.Has(FLAG_C))
	fl.set(FLAG_S, fl.Has(FLAG_N) != fl.Has(FLAG_V))
	return r
}

func (fl *Flags) asr(a uint8) uint8 {
	return fl.shift(a>>1|a&0x80, a&1 != 0)
}

func (fl *Flags) lsr(a uint8) uint8 {
	return fl.shift(a>>1, a&1 != 0)
}

func (fl *Flags) ror(a uint8) uint8 {
	r := a >> 1
	if fl.Has(FLAG_C) {
		r |= 0x80
	}
	return fl.shift(r, a&1 != 0)
}

// wordFlags sets the flags of the 16-bit ADIW and SBIW.
func (fl *Flags) wordFlags(r uint16, v bool, c bool) {
	fl.set(FLAG_V, v)
	fl.set(FLAG_C, c)
	fl.set(FLAG_N, r&0x8000 != 0)
	fl.set(FLAG_Z, r == 0)
	fl.set(FLAG_S, fl.Has(FLAG_N) != fl.Has(FLAG_V))
}

func (fl *Flags) adiw(a uint16, k uint8) (r uint16) {
	r = a + uint16(k)
	ah7 := a&0x8000 != 0
	r15 := r&0x8000 != 0
	fl.wordFlags(r, !ah7 && r15, !r15 && ah7)
	return
}

func (fl *Flags) sbiw(a uint16, k uint8) (r uint16) {
	r = a - uint16(k)
	ah7 := a&0x8000 != 0
	r15 := r&0x8000 != 0
	fl.wordFlags(r, ah7 && !r15, r15 && !ah7)
	return
}

func (fl *Flags) mul(a, b uint8) (r uint16) {
	r = uint16(a) * uint16(b)
	fl.set(FLAG_C, r&0x8000 != 0)
	fl.set(FLAG_Z, r == 0)
	return
}

func swap(a uint8) uint8 {
	return a<<4 | a>>4
}
