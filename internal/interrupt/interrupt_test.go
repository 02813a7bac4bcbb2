package interrupt

import "testing"

func TestServicePriority(t *testing.T) {
	c := New()
	c.Write(0xFFFF, 0x1F)
	c.Request(Timer)
	c.Request(VBlank)
	c.Request(Joypad)

	addr, ok := c.Service()
	if !ok || addr != 0x40 {
		t.Fatalf("first service got %04X ok=%v, want 0040", addr, ok)
	}
	addr, ok = c.Service()
	if !ok || addr != 0x50 {
		t.Fatalf("second service got %04X ok=%v, want 0050", addr, ok)
	}
	addr, ok = c.Service()
	if !ok || addr != 0x60 {
		t.Fatalf("third service got %04X ok=%v, want 0060", addr, ok)
	}
	if _, ok := c.Service(); ok {
		t.Fatal("service succeeded with nothing pending")
	}
}

func TestServiceRequiresEnable(t *testing.T) {
	c := New()
	c.Request(Serial)
	if c.HasPending() {
		t.Fatal("pending without IE bit set")
	}
	c.Write(0xFFFF, 1<<3)
	if !c.HasPending() {
		t.Fatal("not pending with IE and IF set")
	}
}

func TestIFUpperBitsReadOnes(t *testing.T) {
	c := New()
	c.Write(0xFF0F, 0x05)
	if got := c.Read(0xFF0F); got != 0xE5 {
		t.Fatalf("IF read got %02X, want E5", got)
	}
	c.Write(0xFF0F, 0xFF)
	if got := c.Read(0xFF0F); got != 0xFF {
		t.Fatalf("IF read got %02X, want FF", got)
	}
}

func TestServiceClearsOnlyServicedBit(t *testing.T) {
	c := New()
	c.Write(0xFFFF, 0x1F)
	c.Write(0xFF0F, 0x06)
	if addr, _ := c.Service(); addr != 0x48 {
		t.Fatalf("serviced wrong vector %04X", addr)
	}
	if got := c.Read(0xFF0F); got&0x1F != 0x04 {
		t.Fatalf("IF after service %02X, want timer bit only", got&0x1F)
	}
}
