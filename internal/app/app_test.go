package app

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/crown/internal/crown"
)

type stubFetcher struct {
	st  crown.State
	err error
}

func (s stubFetcher) Fetch(context.Context) (crown.State, error) { return s.st, s.err }

func TestPrintOnce(t *testing.T) {
	var out bytes.Buffer
	st := crown.State{Holder: "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7", Price: 5_000_000, Message: "Hello"}
	if err := printOnce(context.Background(), stubFetcher{st: st}, &out); err != nil {
		t.Fatalf("printOnce returned error: %v", err)
	}
	got := out.String()
	for _, want := range []string{st.Holder, "5.0 STX (5000000 micro)", "message: Hello"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output = %q, want it to contain %q", got, want)
		}
	}
}

func TestPrintOnce_QueryError(t *testing.T) {
	var out bytes.Buffer
	queryErr := crown.Wrap(crown.CodeQueryFailed, "fetch crown state", errors.New("timeout"))
	err := printOnce(context.Background(), stubFetcher{err: queryErr}, &out)
	if !errors.Is(err, crown.ErrQuery) {
		t.Fatalf("printOnce error = %v, want QUERY_FAILED", err)
	}
	if out.Len() != 0 {
		t.Fatalf("output = %q, want nothing on failure", out.String())
	}
}

func TestRedirectLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "crown.log")
	restore, err := redirectLog(path)
	if err != nil {
		t.Fatalf("redirectLog returned error: %v", err)
	}
	log.Printf("claim broadcast: txid=0xabc price=1")
	restore()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "claim broadcast: txid=0xabc") {
		t.Fatalf("log file = %q", data)
	}
}
