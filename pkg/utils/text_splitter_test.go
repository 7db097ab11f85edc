package utils

import "testing"

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	// Runes, not bytes: a short CJK string must not be split even though its
	// byte length exceeds the chunk size.
	text := "夜色渐深，渡口无人。"
	chunks := SplitText(text, 15, 3)

	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("SplitText = %q, want single chunk %q", chunks, text)
	}
}

func TestSplitTextOverlap(t *testing.T) {
	text := "abcdefghij"
	chunks := SplitText(text, 4, 2)

	want := []string{"abcd", "cdef", "efgh", "ghij"}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %v, want %v", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestSplitTextOverlapAtLeastChunkSize(t *testing.T) {
	chunks := SplitText("abcdefgh", 3, 5)

	want := []string{"abc", "def", "gh"}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %v, want %v", chunks, want)
	}
}
