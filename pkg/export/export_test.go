package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fgam/spatialam/pkg/geom"
	"github.com/fgam/spatialam/pkg/motion"
	"github.com/fgam/spatialam/pkg/plane"
	"github.com/fgam/spatialam/pkg/program"
)

func sampleProgram(t *testing.T) *program.Program {
	t.Helper()
	b := program.NewBuilder(program.DefaultOptions(), plane.DefaultOptions(), motion.DefaultPolicy())
	prog, err := b.Build([]geom.Polyline{
		{geom.V(100, 0, 0), geom.V(100, 0, 30), geom.V(130, 0, 0)},
		{geom.V(300, 0, 0), geom.V(340, 0, 0)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", MsgPack},
		{"msgpack", MsgPack},
		{"JSON", JSON},
		{"cbor", CBOR},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestProgramSurvivesEachFormat(t *testing.T) {
	prog := sampleProgram(t)
	for _, f := range []Format{MsgPack, JSON, CBOR} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, prog, f); err != nil {
				t.Fatal(err)
			}
			var got program.Program
			if err := Decode(&buf, &got, f); err != nil {
				t.Fatal(err)
			}
			if len(got.Records) != len(prog.Records) {
				t.Fatalf("decoded %d records, want %d", len(got.Records), len(prog.Records))
			}
			last := len(prog.Records) - 1
			if got.Records[last].Kind != program.StopExtrusion ||
				!geom.Approx(got.Records[last].Frame.Origin, prog.Records[last].Frame.Origin, 1e-12) {
				t.Errorf("last record = %+v", got.Records[last])
			}
		})
	}
}

func TestJSONUsesFieldTags(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleProgram(t), JSON); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"records"`, `"velocityRatio"`, `"e5"`, `"frame"`} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("JSON output missing %s", key)
		}
	}
}

func TestUnknownFormat(t *testing.T) {
	if err := Encode(&bytes.Buffer{}, 1, Format(9)); err == nil {
		t.Error("expected error for unknown format")
	}
}
