package goruntime

import (
	"reflect"
	"ripos/kernel/mem"
	"testing"
	"unsafe"
)

func TestSysReserveAndAllocZeroSizeShortCircuit(t *testing.T) {
	defer func() { heapAlloc = nil }()
	heapAlloc = nil

	var reserved bool
	if got := sysReserve(nil, 0, &reserved); got != unsafe.Pointer(uintptr(0)) {
		t.Fatalf("expected sysReserve(0) to return nil; got %v", got)
	}
	if !reserved {
		t.Fatal("expected reserved to be set to true")
	}

	var stat uint64
	if got := sysAlloc(0, &stat); got != unsafe.Pointer(uintptr(0)) {
		t.Fatalf("expected sysAlloc(0) to return nil; got %v", got)
	}
}

func TestSysMapPanicsIfNotReserved(t *testing.T) {
	defer func() {
		if err := recover(); err == nil {
			t.Fatal("expected sysMap to panic when reserved is false")
		}
	}()

	sysMap(nil, 0, false, nil)
}

func TestSysMapPassesThroughReservedRegion(t *testing.T) {
	var stat uint64
	addr := unsafe.Pointer(uintptr(0xbadf00d))

	got := sysMap(addr, uintptr(4*mem.PageSize), true, &stat)
	if got != addr {
		t.Fatalf("expected sysMap to return the address it was given; got %v", got)
	}
	if stat != uint64(4*mem.PageSize) {
		t.Fatalf("expected stat counter to be %d; got %d", uint64(4*mem.PageSize), stat)
	}
}

func TestGetRandomData(t *testing.T) {
	sample1 := make([]byte, 128)
	sample2 := make([]byte, 128)

	getRandomData(sample1)
	getRandomData(sample2)

	if reflect.DeepEqual(sample1, sample2) {
		t.Fatal("expected getRandomData to return different values for each invocation")
	}
}

func TestInit(t *testing.T) {
	defer func() {
		mallocInitFn = mallocInit
		algInitFn = algInit
		modulesInitFn = modulesInit
		typeLinksInitFn = typeLinksInit
		itabsInitFn = itabsInit
	}()

	mallocInitFn = func() {}
	algInitFn = func() {}
	modulesInitFn = func() {}
	typeLinksInitFn = func() {}
	itabsInitFn = func() {}

	if err := Init(); err != nil {
		t.Fatal(err)
	}
}
