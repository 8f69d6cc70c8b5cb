package recal

import (
	"bytes"
	"encoding/json"
	"regexp"
	"testing"
)

func TestSlogLogger(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewSlogLogger(&stdout, &stderr)

	l.Info("Opened file", "treeReader")
	re := regexp.MustCompile(`^\[\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\] \[treeReader\] Opened file\n$`)
	if !re.MatchString(stdout.String()) {
		t.Fatalf("invalid info line: %q", stdout.String())
	}

	l.Error("run 9400 skipped")
	var rec map[string]interface{}
	if err := json.Unmarshal(stderr.Bytes(), &rec); err != nil {
		t.Fatalf("error line is not JSON: %+v", err)
	}
	if got, want := rec["msg"], "run 9400 skipped"; got != want {
		t.Fatalf("invalid message: got=%v, want=%v", got, want)
	}
	if got, want := rec["level"], "ERROR"; got != want {
		t.Fatalf("invalid level: got=%v, want=%v", got, want)
	}
}

func TestSetLogger(t *testing.T) {
	var stdout, stderr bytes.Buffer
	SetLogger(NewSlogLogger(&stdout, &stderr))
	defer SetLogger(nil)

	table := NewGainTable()
	table.Add(1, nil)
	table.Add(1, nil)
	if !bytes.Contains(stderr.Bytes(), []byte("duplicate SPE run found: 1")) {
		t.Fatalf("duplicate run not reported: %q", stderr.String())
	}

	SetLogger(nil)
	stderr.Reset()
	table.Add(1, nil)
	if stderr.Len() != 0 {
		t.Fatalf("discard logger wrote %q", stderr.String())
	}
}
