package main

import "testing"

func TestParseEncodeFlags(t *testing.T) {
	config, err := parseEncodeFlags([]string{"photos", "-out", "vault", "-width", "640", "-height", "480", "-level", "5", "-simulate"})
	if err != nil {
		t.Fatalf("parseEncodeFlags failed: %v", err)
	}
	if config.folder != "photos" || config.outPrefix != "vault" {
		t.Errorf("unexpected paths: %+v", config)
	}
	if config.width != 640 || config.height != 480 || config.level != 5 {
		t.Errorf("unexpected numeric flags: %+v", config)
	}
	if !config.simulate {
		t.Error("simulate flag not parsed")
	}
	if config.frameRate != 30 {
		t.Errorf("expected default fps 30, got %d", config.frameRate)
	}
}

func TestParseEncodeFlagsMissingFolder(t *testing.T) {
	if _, err := parseEncodeFlags(nil); err == nil {
		t.Error("expected error without a source folder")
	}
}

func TestParseEncodeFlagsMissingOut(t *testing.T) {
	if _, err := parseEncodeFlags([]string{"photos"}); err == nil {
		t.Error("expected error without -out")
	}
}

func TestParseDecodeFlags(t *testing.T) {
	config, err := parseDecodeFlags([]string{"-out", "vault", "-output-folder", "restored", "-verbose"})
	if err != nil {
		t.Fatalf("parseDecodeFlags failed: %v", err)
	}
	if config.outPrefix != "vault" || config.outputFolder != "restored" {
		t.Errorf("unexpected paths: %+v", config)
	}
	if !config.verbose {
		t.Error("verbose flag not parsed")
	}
}

func TestParseDecodeFlagsMissingArguments(t *testing.T) {
	if _, err := parseDecodeFlags([]string{"-out", "vault"}); err == nil {
		t.Error("expected error without -output-folder")
	}
	if _, err := parseDecodeFlags([]string{"-output-folder", "restored"}); err == nil {
		t.Error("expected error without -out")
	}
}

func TestParseInfoFlags(t *testing.T) {
	outPrefix, err := parseInfoFlags([]string{"-out", "vault"})
	if err != nil {
		t.Fatalf("parseInfoFlags failed: %v", err)
	}
	if outPrefix != "vault" {
		t.Errorf("expected prefix vault, got %q", outPrefix)
	}

	if _, err := parseInfoFlags(nil); err == nil {
		t.Error("expected error without -out")
	}
}
