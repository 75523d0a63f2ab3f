package sbtconf

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	conf, err := LoadSBTConf(strings.NewReader("D: 4\nKsize: 21\nTableSize: 50000\n"))
	if err != nil {
		t.Fatal(err)
	}
	if conf.D != 4 {
		t.Fatalf("D = %d, want 4", conf.D)
	}
	if conf.Ksize != 21 {
		t.Fatalf("Ksize = %d, want 21", conf.Ksize)
	}
	if conf.TableSize != 50000 {
		t.Fatalf("TableSize = %d, want 50000", conf.TableSize)
	}
	if conf.Num != DefaultSBTConf.Num {
		t.Fatalf("Num = %d, want default %d", conf.Num, DefaultSBTConf.Num)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	if _, err := LoadSBTConf(strings.NewReader("Bogus: 1\n")); err == nil {
		t.Fatal("expected an error for an unknown key")
	}
}

func TestLoadRejectsBadInteger(t *testing.T) {
	if _, err := LoadSBTConf(strings.NewReader("D: banana\n")); err == nil {
		t.Fatal("expected an error for a malformed integer")
	}
}

func TestWriteThenLoad(t *testing.T) {
	conf := &SBTConf{D: 3, Ksize: 51, Num: 0, Scaled: 1000, NTables: 4, TableSize: 999983}
	var buf bytes.Buffer
	if err := conf.Write(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := LoadSBTConf(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *conf {
		t.Fatalf("round trip mismatch: %+v != %+v", got, conf)
	}
}

func TestMaxHash(t *testing.T) {
	conf := SBTConf{Scaled: 0}
	if conf.MaxHash() != 0 {
		t.Fatalf("MaxHash with Scaled=0 should be 0")
	}
	conf.Scaled = 1
	if conf.MaxHash() != ^uint64(0) {
		t.Fatalf("MaxHash with Scaled=1 should be 2^64-1")
	}
	conf.Scaled = 1000
	if conf.MaxHash() != ^uint64(0)/1000 {
		t.Fatalf("MaxHash with Scaled=1000 wrong: %d", conf.MaxHash())
	}
}
