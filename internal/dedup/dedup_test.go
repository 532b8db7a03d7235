// SPDX-License-Identifier: MPL-2.0

package dedup_test

import (
	"errors"
	"strings"
	"testing"

	"uqtools/internal/dedup"
)

// runEngine performs a full pass over input with the given options and
// returns the formatted output.
func runEngine(t *testing.T, opts dedup.Options, input string) string {
	t.Helper()

	eng := dedup.New(opts, nil)
	var out strings.Builder
	if err := eng.Run(strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestDefaultMode_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	got := runEngine(t, dedup.DefaultOptions(), "b\na\nb\nc\na\n")
	want := "b\na\nc\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDefaultMode_Idempotent(t *testing.T) {
	t.Parallel()

	once := runEngine(t, dedup.DefaultOptions(), "b\na\nb\nc\na\nb\n")
	twice := runEngine(t, dedup.DefaultOptions(), once)
	if twice != once {
		t.Errorf("second pass changed output: %q -> %q", once, twice)
	}
}

func TestDefaultMode_EmptyInput(t *testing.T) {
	t.Parallel()

	if got := runEngine(t, dedup.DefaultOptions(), ""); got != "" {
		t.Errorf("output for empty input = %q, want empty", got)
	}
}

func TestDefaultMode_MissingFinalNewline(t *testing.T) {
	t.Parallel()

	got := runEngine(t, dedup.DefaultOptions(), "a\nb\na")
	want := "a\nb\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCount_RightJustified(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.Count = true

	got := runEngine(t, opts, "x\ny\nx\nx\n")
	want := " 3 x\n 1 y\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestCount_WidthFollowsWidestCount(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.Count = true

	input := strings.Repeat("a\n", 12) + "b\n"
	got := runEngine(t, opts, input)
	want := " 12 a\n  1 b\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestOnlyRepeated(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.OnlyRepeated = true

	got := runEngine(t, opts, "b\na\nb\nc\na\n")
	want := "b\na\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestOnlyUnique(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.OnlyUnique = true

	got := runEngine(t, opts, "b\na\nb\nc\na\n")
	want := "c\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// The records emitted under only-repeated and only-unique partition the
// deduplicated key set: disjoint, and their union is the default output.
func TestRepeatedUniquePartition(t *testing.T) {
	t.Parallel()

	const input = "m\nq\nm\nz\nq\nm\nw\n"

	repeated := dedup.DefaultOptions()
	repeated.OnlyRepeated = true
	unique := dedup.DefaultOptions()
	unique.OnlyUnique = true

	repeatedKeys := strings.Fields(runEngine(t, repeated, input))
	uniqueKeys := strings.Fields(runEngine(t, unique, input))
	allKeys := strings.Fields(runEngine(t, dedup.DefaultOptions(), input))

	seen := make(map[string]bool)
	for _, k := range repeatedKeys {
		seen[k] = true
	}
	for _, k := range uniqueKeys {
		if seen[k] {
			t.Errorf("key %q emitted by both only-repeated and only-unique", k)
		}
		seen[k] = true
	}
	if len(seen) != len(allKeys) {
		t.Errorf("partition covers %d keys, want %d", len(seen), len(allKeys))
	}
	for _, k := range allKeys {
		if !seen[k] {
			t.Errorf("key %q missing from both partitions", k)
		}
	}
}

func TestIgnoreCase_FirstSeenCasingWins(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.IgnoreCase = true
	opts.Count = true

	got := runEngine(t, opts, "Foo\nfoo\nFOO\n")
	want := " 3 Foo\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestAllRepeated_EveryOccurrence(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.AllRepeated = true
	opts.OnlyRepeated = true

	got := runEngine(t, opts, "a\nb\na\nc\na\n")
	want := "a\na\na\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestAllRepeated_NoFilterCopiesInput(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.AllRepeated = true

	const input = "a\nb\na\n"
	if got := runEngine(t, opts, input); got != input {
		t.Errorf("output = %q, want input copied unchanged %q", got, input)
	}
}

func TestAllRepeated_SeparateMethod(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.AllRepeated = true
	opts.OnlyRepeated = true
	opts.Method = dedup.MethodSeparate

	got := runEngine(t, opts, "a\na\nb\nb\n")
	want := "a\na\n\nb\nb\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestAllRepeated_SeparateNonAdjacentGroups(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.AllRepeated = true
	opts.OnlyRepeated = true
	opts.Method = dedup.MethodSeparate

	// Groups alternate in the original sequence; every key change among
	// emitted records gets one separator.
	got := runEngine(t, opts, "a\nb\na\nb\n")
	want := "a\n\nb\n\na\n\nb\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestAllRepeated_PrependMethod(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.AllRepeated = true
	opts.OnlyRepeated = true
	opts.Method = dedup.MethodPrepend

	// prepend differs from separate only in the separator before the
	// first group.
	got := runEngine(t, opts, "a\na\nb\nb\n")
	want := "\na\na\n\nb\nb\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestZeroTerminated(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.ZeroTerminated = true

	got := runEngine(t, opts, "a\x00b\x00a\x00")
	want := "a\x00b\x00"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestZeroTerminated_NewlinesAreContent(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.ZeroTerminated = true

	got := runEngine(t, opts, "a\nb\x00a\nb\x00")
	want := "a\nb\x00"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestSizeCeiling_Abort(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.MaxInput = 10
	opts.MaxInputText = "10"

	eng := dedup.New(opts, nil)
	// Records cost 5, 5, and 3 bytes; the third crosses the ceiling.
	err := eng.Consume(strings.NewReader("aaaa\nbbbb\ncc\n"))
	if err == nil {
		t.Fatal("Consume() error = nil, want size-ceiling abort")
	}
	if !errors.Is(err, dedup.ErrInputTooLarge) {
		t.Fatalf("error should wrap ErrInputTooLarge, got: %v", err)
	}
	var tooLarge *dedup.InputTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("error should be *InputTooLargeError, got: %T", err)
	}
	if tooLarge.Limit != "10" {
		t.Errorf("abort message limit = %q, want %q", tooLarge.Limit, "10")
	}

	// The breaching record is not indexed.
	if eng.Records() != 2 {
		t.Errorf("Records() = %d, want 2", eng.Records())
	}
	if eng.Distinct() != 2 {
		t.Errorf("Distinct() = %d, want 2", eng.Distinct())
	}
}

func TestSizeCeiling_ExactFitPasses(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.MaxInput = 10
	opts.MaxInputText = "10"

	got := runEngine(t, opts, "aaaa\nbbbb\n")
	want := "aaaa\nbbbb\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestSizeCeiling_OversizedSingleRecord(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.MaxInput = 10
	opts.MaxInputText = "10"

	// One record far beyond both the ceiling and the scanner buffer.
	huge := strings.Repeat("x", 80*1024)
	eng := dedup.New(opts, nil)
	err := eng.Consume(strings.NewReader(huge + "\n"))
	if !errors.Is(err, dedup.ErrInputTooLarge) {
		t.Fatalf("Consume() error = %v, want ErrInputTooLarge", err)
	}
}

func TestValidate_MutualExclusion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mut  func(*dedup.Options)
	}{
		{"unique with repeated", func(o *dedup.Options) {
			o.OnlyUnique = true
			o.OnlyRepeated = true
		}},
		{"unique with all-repeated", func(o *dedup.Options) {
			o.OnlyUnique = true
			o.AllRepeated = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := dedup.DefaultOptions()
			tt.mut(&opts)
			err := opts.Validate()
			if !errors.Is(err, dedup.ErrConflictingOptions) {
				t.Errorf("Validate() error = %v, want ErrConflictingOptions", err)
			}
		})
	}
}

func TestValidate_AcceptsDisjointModes(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.Count = true
	opts.OnlyRepeated = true
	opts.AllRepeated = true
	opts.IgnoreCase = true
	if err := opts.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestParseSeparatorMethod(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"none", "prepend", "separate"} {
		if _, err := dedup.ParseSeparatorMethod(valid); err != nil {
			t.Errorf("ParseSeparatorMethod(%q) error = %v", valid, err)
		}
	}
	if _, err := dedup.ParseSeparatorMethod("append"); !errors.Is(err, dedup.ErrInvalidSeparatorMethod) {
		t.Errorf("ParseSeparatorMethod(%q) error = %v, want ErrInvalidSeparatorMethod", "append", err)
	}
}

func TestAdvisory(t *testing.T) {
	t.Parallel()

	opts := dedup.DefaultOptions()
	opts.AllRepeated = true
	if opts.Advisory() == "" {
		t.Error("Advisory() empty for plain --all-repeated=none, want warning")
	}

	opts.Count = true
	if opts.Advisory() != "" {
		t.Errorf("Advisory() = %q with --count set, want empty", opts.Advisory())
	}

	opts.Count = false
	opts.OnlyRepeated = true
	if opts.Advisory() != "" {
		t.Errorf("Advisory() = %q with --repeated set, want empty", opts.Advisory())
	}

	opts.OnlyRepeated = false
	opts.Method = dedup.MethodSeparate
	if opts.Advisory() != "" {
		t.Errorf("Advisory() = %q with separators, want empty", opts.Advisory())
	}
}

func TestConsume_MultipleCalls(t *testing.T) {
	t.Parallel()

	eng := dedup.New(dedup.DefaultOptions(), nil)
	for _, chunk := range []string{"a\nb\n", "b\nc\n"} {
		if err := eng.Consume(strings.NewReader(chunk)); err != nil {
			t.Fatalf("Consume() error = %v", err)
		}
	}
	var out strings.Builder
	if err := eng.WriteOutput(&out); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}
	want := "a\nb\nc\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}
