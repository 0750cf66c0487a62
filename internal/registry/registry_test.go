package registry

import "testing"

func TestRegisterProtocolAnalyzerIndexesByPort(t *testing.T) {
	r := New()
	r.RegisterProtocolAnalyzer(&ProtocolAnalyzer{Name: "http", Ports: []uint16{80, 8080}})

	got := r.ProtocolAnalyzersForPort(8080)
	if len(got) != 1 || got[0].Name != "http" {
		t.Fatalf("ProtocolAnalyzersForPort(8080) = %v, want [http]", got)
	}
	if len(r.ProtocolAnalyzersForPort(443)) != 0 {
		t.Errorf("expected no analyzers registered for port 443")
	}
}

func TestRegisterProtocolAnalyzerIsIdempotentByName(t *testing.T) {
	r := New()
	r.RegisterProtocolAnalyzer(&ProtocolAnalyzer{Name: "http", Ports: []uint16{80}})
	r.RegisterProtocolAnalyzer(&ProtocolAnalyzer{Name: "http", Ports: []uint16{81}})

	if len(r.ProtocolAnalyzersForPort(81)) != 0 {
		t.Errorf("re-registration under the same Name should be a no-op, but port 81 index was updated")
	}
}

func TestRegisterFileAnalyzerIndexesByMIME(t *testing.T) {
	r := New()
	r.RegisterFileAnalyzer(&FileAnalyzer{Name: "png", MIMETypes: []string{"image/png"}})

	got := r.FileAnalyzersForMIME("image/png")
	if len(got) != 1 || got[0].Name != "png" {
		t.Fatalf("FileAnalyzersForMIME(image/png) = %v, want [png]", got)
	}
}

func TestEnumLabelFallsBackToNumeric(t *testing.T) {
	r := New()
	if got := r.EnumLabel("Unknown", 3); got != "3" {
		t.Errorf("EnumLabel for unknown type = %q, want \"3\"", got)
	}

	r.RegisterEnumType(&EnumType{Name: "Color", Labels: map[int64]string{1: "Red"}})
	if got := r.EnumLabel("Color", 1); got != "Red" {
		t.Errorf("EnumLabel(Color, 1) = %q, want Red", got)
	}
	if got := r.EnumLabel("Color", 99); got != "Color(99)" {
		t.Errorf("EnumLabel(Color, 99) = %q, want Color(99)", got)
	}
}
