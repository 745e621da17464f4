package video

import "testing"

func TestUnclaimedPixelHasNoOwner(t *testing.T) {
	var buf SpritePriorityBuffer
	buf.Clear()

	if owner := buf.GetOwner(10); owner != -1 {
		t.Fatalf("expected no owner, got %d", owner)
	}
}

func TestFirstClaimAlwaysSucceeds(t *testing.T) {
	var buf SpritePriorityBuffer
	buf.Clear()

	if ok := buf.TryClaimPixel(5, 3, 20); !ok {
		t.Fatalf("expected first claim to succeed")
	}
	if owner := buf.GetOwner(5); owner != 3 {
		t.Fatalf("expected owner 3, got %d", owner)
	}
}

func TestLowerXWinsOverHigherX(t *testing.T) {
	var buf SpritePriorityBuffer
	buf.Clear()

	buf.TryClaimPixel(10, 0, 30)
	ok := buf.TryClaimPixel(10, 1, 10)
	if !ok {
		t.Fatalf("expected lower-X sprite to win the claim")
	}
	if owner := buf.GetOwner(10); owner != 1 {
		t.Fatalf("expected owner 1, got %d", owner)
	}
}

func TestHigherXDoesNotDisplaceLowerX(t *testing.T) {
	var buf SpritePriorityBuffer
	buf.Clear()

	buf.TryClaimPixel(10, 0, 10)
	ok := buf.TryClaimPixel(10, 1, 30)
	if ok {
		t.Fatalf("expected higher-X sprite to lose the claim")
	}
	if owner := buf.GetOwner(10); owner != 0 {
		t.Fatalf("expected owner to remain 0, got %d", owner)
	}
}

func TestEqualXBreaksTieByLowerOAMIndex(t *testing.T) {
	var buf SpritePriorityBuffer
	buf.Clear()

	buf.TryClaimPixel(10, 5, 20)
	ok := buf.TryClaimPixel(10, 2, 20)
	if !ok {
		t.Fatalf("expected lower OAM index to win the tie")
	}
	if owner := buf.GetOwner(10); owner != 2 {
		t.Fatalf("expected owner 2, got %d", owner)
	}

	ok = buf.TryClaimPixel(10, 9, 20)
	if ok {
		t.Fatalf("expected higher OAM index to lose the tie")
	}
	if owner := buf.GetOwner(10); owner != 2 {
		t.Fatalf("expected owner to remain 2, got %d", owner)
	}
}

func TestOutOfBoundsColumnIsIgnored(t *testing.T) {
	var buf SpritePriorityBuffer
	buf.Clear()

	if ok := buf.TryClaimPixel(-1, 0, 0); ok {
		t.Fatalf("expected negative column to be rejected")
	}
	if ok := buf.TryClaimPixel(FramebufferWidth, 0, 0); ok {
		t.Fatalf("expected past-the-end column to be rejected")
	}
	if owner := buf.GetOwner(-1); owner != -1 {
		t.Fatalf("expected no owner for out-of-range column")
	}
}

func TestClearResetsPriorAssignments(t *testing.T) {
	var buf SpritePriorityBuffer
	buf.Clear()
	buf.TryClaimPixel(0, 7, 0)

	buf.Clear()

	if owner := buf.GetOwner(0); owner != -1 {
		t.Fatalf("expected Clear to reset ownership, got owner %d", owner)
	}
}
