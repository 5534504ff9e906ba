package jinjaspan

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkOrdersBySpanThenCategory(t *testing.T) {
	sink := NewSink()
	sink.Add(Diagnostic{Category: CatParserUnexpectedToken, Span: Span{Start: Position{Offset: 10}}})
	sink.Add(Diagnostic{Category: CatLexerUnexpectedChar, Span: Span{Start: Position{Offset: 3}}})
	sink.Add(Diagnostic{Category: CatRendererUnknownFilter, Span: Span{Start: Position{Offset: 3}}})

	all := sink.All()
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].Span.Start.Offset)
	assert.Equal(t, CatLexerUnexpectedChar, all[0].Category)
	assert.Equal(t, 3, all[1].Span.Start.Offset)
	assert.Equal(t, CatRendererUnknownFilter, all[1].Category)
	assert.Equal(t, 10, all[2].Span.Start.Offset)
}

func TestSinkHasErrors(t *testing.T) {
	sink := NewSink()
	sink.Add(Diagnostic{Category: CatStyleTrailingWhitespace, Severity: SeverityWarning})
	assert.False(t, sink.HasErrors())

	sink.Add(Diagnostic{Category: CatParserUnexpectedToken, Severity: SeverityError, Span: Span{Start: Position{Offset: 1}}})
	assert.True(t, sink.HasErrors())
}

func TestSinkMerge(t *testing.T) {
	a := NewSink()
	a.Add(Diagnostic{Category: CatLexerUnexpectedChar, Span: Span{Start: Position{Offset: 1}}})
	b := NewSink()
	b.Add(Diagnostic{Category: CatParserUnexpectedToken, Span: Span{Start: Position{Offset: 2}}})

	a.Merge(b)
	assert.Equal(t, 2, a.Len())
}

func TestSinkAddf(t *testing.T) {
	sink := NewSink()
	sink.Addf(CatRendererUnknownVariable, SeverityError, Span{}, "unknown variable %q", "x")
	all := sink.All()
	require.Len(t, all, 1)
	assert.Equal(t, `unknown variable "x"`, all[0].Message)
}

func TestSortDiagnostics(t *testing.T) {
	ds := []Diagnostic{
		{Category: CatParserUnexpectedToken, Span: Span{Start: Position{Offset: 5}}},
		{Category: CatLexerUnexpectedChar, Span: Span{Start: Position{Offset: 1}}},
	}
	SortDiagnostics(ds)
	assert.Equal(t, 1, ds[0].Span.Start.Offset)
	assert.Equal(t, 5, ds[1].Span.Start.Offset)
}

func TestSinkMergePreservesBothSidesDeepEqual(t *testing.T) {
	a := NewSink()
	a.Add(Diagnostic{Category: CatLexerUnexpectedChar, Severity: SeverityError, Message: "m1", Span: Span{Start: Position{Offset: 1}}})
	b := NewSink()
	b.Add(Diagnostic{Category: CatParserUnexpectedToken, Severity: SeverityWarning, Message: "m2", Span: Span{Start: Position{Offset: 2}}})
	a.Merge(b)

	want := []Diagnostic{
		{Category: CatLexerUnexpectedChar, Severity: SeverityError, Message: "m1", Span: Span{Start: Position{Offset: 1}}},
		{Category: CatParserUnexpectedToken, Severity: SeverityWarning, Message: "m2", Span: Span{Start: Position{Offset: 2}}},
	}
	if diff := deep.Equal(a.All(), want); diff != nil {
		t.Errorf("merged diagnostics differ: %v", diff)
	}
}

func TestSinkRetainsDuplicateSpanAndCategory(t *testing.T) {
	sink := NewSink()
	span := Span{Start: Position{Offset: 7}}
	sink.Addf(CatRendererMissingRequiredArg, SeverityError, span, "missing argument %q", "a")
	sink.Addf(CatRendererMissingRequiredArg, SeverityError, span, "missing argument %q", "b")

	all := sink.All()
	require.Len(t, all, 2, "two diagnostics sharing a span and category must both survive, not clobber each other")
	assert.Equal(t, `missing argument "a"`, all[0].Message)
	assert.Equal(t, `missing argument "b"`, all[1].Message)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "hint", SeverityHint.String())
}
