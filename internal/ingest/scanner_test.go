package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScanFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
}

func TestScan_Directory(t *testing.T) {
	tmpDir := t.TempDir()

	writeScanFile(t, filepath.Join(tmpDir, "aapl_10k_2024.json"))
	writeScanFile(t, filepath.Join(tmpDir, "msft", "msft_10q_2025.json"))
	writeScanFile(t, filepath.Join(tmpDir, ".cache", "cached.json"))
	if err := os.WriteFile(filepath.Join(tmpDir, "readme.md"), []byte("# notes"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	files, err := Scan(context.Background(), []string{tmpDir}, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []string{
		filepath.Join(tmpDir, "aapl_10k_2024.json"),
		filepath.Join(tmpDir, "msft", "msft_10q_2025.json"),
	}
	if len(files) != len(want) {
		t.Fatalf("Scan() found %d files, want %d: %v", len(files), len(want), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("Scan() files[%d] = %v, want %v", i, files[i], want[i])
		}
	}
}

func TestScan_HiddenRootIsWalked(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".filings")
	writeScanFile(t, filepath.Join(root, "aapl_10k_2024.json"))

	files, err := Scan(context.Background(), []string{root}, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Scan() found %d files, want 1: %v", len(files), files)
	}
}

func TestScan_ExplicitFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "aapl_10k_2024.json")
	writeScanFile(t, path)

	files, err := Scan(context.Background(), []string{path}, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("Scan() = %v, want [%v]", files, path)
	}

	// Include patterns still apply to explicitly named files.
	files, err = Scan(context.Background(), []string{path}, []string{"msft*.json"})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Scan() with non-matching include = %v, want empty", files)
	}
}

func TestScan_IncludePatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeScanFile(t, filepath.Join(tmpDir, "aapl_10k.json"))
	writeScanFile(t, filepath.Join(tmpDir, "aapl_10q.json"))
	writeScanFile(t, filepath.Join(tmpDir, "msft_10k.json"))
	writeScanFile(t, filepath.Join(tmpDir, "q3", "aapl_8k.json"))

	tests := []struct {
		name     string
		includes []string
		want     int
	}{
		{"no patterns matches everything", nil, 4},
		{"base name pattern matches nested files", []string{"aapl*.json"}, 3},
		{"single company", []string{"msft*.json"}, 1},
		{"directory pattern", []string{"q3/**"}, 1},
		{"no matches", []string{"*.xml"}, 0},
		{"multiple patterns union", []string{"msft*.json", "q3/**"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Scan(context.Background(), []string{tmpDir}, tt.includes)
			if err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if len(files) != tt.want {
				t.Errorf("Scan() found %d files, want %d: %v", len(files), tt.want, files)
			}
		})
	}
}

func TestScan_SortsAcrossPaths(t *testing.T) {
	tmpDir := t.TempDir()
	first := filepath.Join(tmpDir, "alpha", "aapl.json")
	second := filepath.Join(tmpDir, "zeta", "msft.json")
	writeScanFile(t, first)
	writeScanFile(t, second)

	// Pass the directories in reverse order; output is still sorted.
	files, err := Scan(context.Background(), []string{filepath.Dir(second), filepath.Dir(first)}, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Scan() found %d files, want 2: %v", len(files), files)
	}
	if files[0] != first || files[1] != second {
		t.Errorf("Scan() = %v, want [%v %v]", files, first, second)
	}
}

func TestScan_MissingPath(t *testing.T) {
	_, err := Scan(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, nil)
	if err == nil || !strings.Contains(err.Error(), "failed to stat") {
		t.Errorf("Scan() error = %v, want stat failure", err)
	}
}

func TestScan_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, []string{t.TempDir()}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}
