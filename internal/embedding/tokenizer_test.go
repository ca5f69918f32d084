package embedding

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSimpleTokenizer_Tokenize(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, attn, types := tok.Tokenize("hello world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths: %d %d %d", len(ids), len(attn), len(types))
	}
	if ids[0] != clsToken {
		t.Errorf("expected CLS %d, got %d", clsToken, ids[0])
	}
	if ids[3] != sepToken {
		t.Errorf("expected SEP at 3, got %d", ids[3])
	}
	for i := 0; i < 4; i++ {
		if attn[i] != 1 {
			t.Errorf("attention[%d] should be 1", i)
		}
	}
	if attn[4] != 0 {
		t.Error("padding should not be attended")
	}
}

func TestSimpleTokenizer_emptyAndTruncated(t *testing.T) {
	tok := &SimpleTokenizer{}
	ids, _, _ := tok.Tokenize("", 8)
	if ids[0] != clsToken || ids[1] != sepToken {
		t.Errorf("empty text: %v", ids)
	}
	ids, attn, _ := tok.Tokenize("a b c d e f g h i j", 4)
	if ids[3] != sepToken || attn[3] != 1 {
		t.Errorf("truncated text should end with SEP: %v", ids)
	}
}

func TestTerms(t *testing.T) {
	got := Terms("  Stir-Fried  vegetables, LIGHT! ")
	want := []string{"stir", "fried", "vegetables", "light"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
	if len(Terms("")) != 0 {
		t.Error("empty string should have no terms")
	}
}

const testVocab = "[PAD]\n[UNK]\n[CLS]\n[SEP]\nspicy\ncurry\nchick\n##pea\n##s\n,\n"

func TestWordPieceTokenizer_Tokenize(t *testing.T) {
	tok, err := ParseVocab(strings.NewReader(testVocab))
	if err != nil {
		t.Fatal(err)
	}
	ids, attn, types := tok.Tokenize("Spicy chickpeas, curry xyz", 10)
	want := []int64{2, 4, 6, 7, 8, 9, 5, 1, 3, 0}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	wantAttn := []int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 0}
	if !reflect.DeepEqual(attn, wantAttn) {
		t.Errorf("attention = %v, want %v", attn, wantAttn)
	}
	if len(types) != 10 {
		t.Errorf("token types = %d", len(types))
	}
}

func TestWordPieceTokenizer_truncatesBeforeSep(t *testing.T) {
	tok, err := ParseVocab(strings.NewReader(testVocab))
	if err != nil {
		t.Fatal(err)
	}
	ids, attn, _ := tok.Tokenize("chickpeas curry", 4)
	want := []int64{2, 6, 7, 3}
	if !reflect.DeepEqual(ids, want) || attn[3] != 1 {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestParseVocab_missingSpecialToken(t *testing.T) {
	if _, err := ParseVocab(strings.NewReader("[PAD]\n[CLS]\n[SEP]\nfood\n")); err == nil {
		t.Error("expected error for vocab without [UNK]")
	}
}

func TestLoadVocab(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte(testVocab), 0600); err != nil {
		t.Fatal(err)
	}
	tok, err := LoadVocab(path)
	if err != nil {
		t.Fatal(err)
	}
	ids, _, _ := tok.Tokenize("curry", 4)
	if ids[1] != 5 {
		t.Errorf("curry id = %d, want 5", ids[1])
	}
	if _, err := LoadVocab(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing vocab file")
	}
}
