package codex

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigErrorMessage(t *testing.T) {
	tests := []struct {
		param   string
		message string
		want    string
	}{
		{"chunk_size", "must be positive", "codex: config chunk_size: must be positive"},
		{"k", "must be positive", "codex: config k: must be positive"},
	}
	for _, tt := range tests {
		e := &ConfigError{Param: tt.param, Message: tt.message}
		if got := e.Error(); got != tt.want {
			t.Errorf("ConfigError{%q, %q}.Error() = %q, want %q", tt.param, tt.message, got, tt.want)
		}
	}
}

func TestUnknownSiteErrorMessage(t *testing.T) {
	e := &UnknownSiteError{Site: "think_python"}
	want := `codex: unknown site "think_python"`
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFetchErrorMessage(t *testing.T) {
	inner := errors.New("connection refused")

	withDoc := &FetchError{Site: "pep8", Document: "pep-0008.html", Err: inner}
	if got := withDoc.Error(); got != "codex: fetch pep8/pep-0008.html: connection refused" {
		t.Errorf("Error() = %q", got)
	}

	noDoc := &FetchError{Site: "pep8", Err: inner}
	if got := noDoc.Error(); got != "codex: fetch pep8: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrappedErrorsUnwrap(t *testing.T) {
	inner := errors.New("boom")
	tests := []struct {
		name string
		err  error
	}{
		{"fetch", &FetchError{Site: "s", Err: inner}},
		{"embed", &EmbedError{Provider: "tei", Err: inner}},
		{"store", &StoreError{Op: "insert", Err: inner}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, inner) {
				t.Errorf("%v does not unwrap to inner error", tt.err)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, inner) {
				t.Errorf("double wrap lost the chain")
			}
		})
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("ingest docs: %w", &EmbedError{Provider: "tei", Err: errors.New("http 503")})

	var embedErr *EmbedError
	if !errors.As(err, &embedErr) {
		t.Fatal("EmbedError not found through wrapping")
	}
	if embedErr.Provider != "tei" {
		t.Errorf("Provider = %q, want tei", embedErr.Provider)
	}
}
