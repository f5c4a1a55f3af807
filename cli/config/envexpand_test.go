package config

import (
	"testing"
)

func TestExpandEnv_SetVar(t *testing.T) {
	t.Setenv("INGEST_TOKEN", "tok-123")

	got := ExpandEnv("Authorization: Bearer ${INGEST_TOKEN}")
	want := "Authorization: Bearer tok-123"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_UnsetVarBecomesEmpty(t *testing.T) {
	got := ExpandEnv("bucket: ${SPECTOSOFT_UNSET_98765}")
	want := "bucket: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_DefaultUsedWhenUnset(t *testing.T) {
	got := ExpandEnv("listen: ${CONTROL_LISTEN:-127.0.0.1:8787}")
	want := "listen: 127.0.0.1:8787"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_DefaultIgnoredWhenSet(t *testing.T) {
	t.Setenv("CAPTURE_BUCKET", "fleet-captures")

	got := ExpandEnv("bucket: ${CAPTURE_BUCKET:-scratch}")
	want := "bucket: fleet-captures"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_DefaultUsedWhenEmpty(t *testing.T) {
	t.Setenv("CAPTURE_BUCKET", "")

	got := ExpandEnv("bucket: ${CAPTURE_BUCKET:-scratch}")
	want := "bucket: scratch"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_MultipleVarsInOneLine(t *testing.T) {
	t.Setenv("INGEST_HOST", "collect.internal")
	t.Setenv("INGEST_PORT", "9443")

	got := ExpandEnv("url: https://${INGEST_HOST}:${INGEST_PORT}")
	want := "url: https://collect.internal:9443"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnv_PlainTextUntouched(t *testing.T) {
	input := "data_root: /var/lib/spectosoft"
	if got := ExpandEnv(input); got != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

// $VAR without braces is not a reference and must survive literally;
// window_command values legitimately contain shell-style dollars.
func TestExpandEnv_BareDollarUntouched(t *testing.T) {
	t.Setenv("DISPLAY", ":1")

	input := "window_command: [sh, -c, 'echo $DISPLAY']"
	if got := ExpandEnv(input); got != input {
		t.Errorf("got %q, want %q", got, input)
	}
}

func TestExpandEnv_AgentYAML(t *testing.T) {
	t.Setenv("INGEST_TOKEN", "tok-123")
	t.Setenv("CAPTURE_BUCKET", "fleet-captures")

	input := `endpoint:
  url: ${INGEST_URL:-https://collect.internal}
  headers:
    Authorization: Bearer ${INGEST_TOKEN}
uploader:
  s3:
    bucket: ${CAPTURE_BUCKET}`

	got := ExpandEnv(input)
	want := `endpoint:
  url: https://collect.internal
  headers:
    Authorization: Bearer tok-123
uploader:
  s3:
    bucket: fleet-captures`

	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
