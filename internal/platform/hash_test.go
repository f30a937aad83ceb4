package platform

import (
	"errors"
	"testing"
)

func TestSelectSHA1PicksTaggedEntry(t *testing.T) {
	hashes := []TaggedHash{
		{Value: "d41d8cd98f00b204e9800998ecf8427e", Algo: HashAlgoMD5},
		{Value: "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", Algo: HashAlgoSHA1},
	}
	got, err := SelectSHA1(hashes)
	if err != nil {
		t.Fatalf("select error: %v", err)
	}
	if got != "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef" {
		t.Fatalf("sha1 mismatch: %s", got)
	}
}

func TestSelectSHA1IgnoresPosition(t *testing.T) {
	// 首位不是 SHA-1 时也必须按标签找到正确条目。
	hashes := []TaggedHash{
		{Value: "md5value", Algo: HashAlgoMD5},
		{Value: "md5value2", Algo: HashAlgoMD5},
		{Value: "sha1value", Algo: HashAlgoSHA1},
	}
	got, err := SelectSHA1(hashes)
	if err != nil || got != "sha1value" {
		t.Fatalf("expected sha1value, got %q err=%v", got, err)
	}
}

func TestSelectSHA1Unavailable(t *testing.T) {
	cases := [][]TaggedHash{
		nil,
		{},
		{{Value: "md5", Algo: HashAlgoMD5}},
		{{Value: "", Algo: HashAlgoSHA1}},
	}
	for i, hashes := range cases {
		if _, err := SelectSHA1(hashes); !errors.Is(err, ErrHashUnavailable) {
			t.Fatalf("case %d: expected ErrHashUnavailable, got %v", i, err)
		}
	}
}
