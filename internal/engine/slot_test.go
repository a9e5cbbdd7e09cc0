package engine

import (
	"bytes"
	"sync"
	"testing"

	"github.com/vovakirdan/redengine/internal/core"
)

func uniformFrame(t *testing.T, size core.Size, v byte) *core.Frame {
	t.Helper()
	f, err := core.NewFrame(size, bytes.Repeat([]byte{v}, size.Bytes()))
	if err != nil {
		t.Fatalf("NewFrame() failed: %v", err)
	}
	return f
}

func TestSlotReadBeforePublish(t *testing.T) {
	s := NewSlot()
	if f, ok := s.Read(); ok || f != nil {
		t.Errorf("Read() on empty slot = (%v, %v), expected (nil, false)", f, ok)
	}
}

func TestSlotRepeatedReads(t *testing.T) {
	s := NewSlot()
	size := core.Size{W: 4, H: 4}
	f1 := uniformFrame(t, size, 1)
	f2 := uniformFrame(t, size, 2)

	s.Publish(f1)
	s.Publish(f2)

	for range 3 {
		got, ok := s.Read()
		if !ok || got != f2 {
			t.Fatalf("Read() = %p, expected latest frame %p", got, f2)
		}
	}
	if s.Seq() != 2 {
		t.Errorf("Seq() = %d, expected 2", s.Seq())
	}
}

func TestSlotNeverTorn(t *testing.T) {
	s := NewSlot()
	size := core.Size{W: 64, H: 64}
	frames := []*core.Frame{uniformFrame(t, size, 0x11), uniformFrame(t, size, 0x22)}
	s.Publish(frames[0])

	stop := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			s.Publish(frames[i%2])
		}
	}()

	errs := make(chan string, 4)
	var readers sync.WaitGroup
	for range 4 {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for range 2000 {
				f, ok := s.Read()
				if !ok {
					errs <- "slot emptied while publishing"
					return
				}
				pix := f.Image().Pix
				first := pix[0]
				if first != 0x11 && first != 0x22 {
					errs <- "unexpected frame content"
					return
				}
				if !bytes.Equal(pix, bytes.Repeat([]byte{first}, len(pix))) {
					errs <- "torn frame observed"
					return
				}
			}
		}()
	}

	readers.Wait()
	close(stop)
	<-writerDone
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}

func TestSlotClear(t *testing.T) {
	s := NewSlot()
	s.Publish(uniformFrame(t, core.Size{W: 1, H: 1}, 9))
	s.Clear()
	if _, ok := s.Read(); ok {
		t.Error("Read() after Clear should report no frame")
	}
}

func TestSlotUninitializedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Read() on nil slot should panic")
		}
	}()
	var s *Slot
	s.Read()
}
