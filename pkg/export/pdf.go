package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultPDFCommand is the HTML to PDF converter looked up on PATH.
const DefaultPDFCommand = "wkhtmltopdf"

// ErrNoConverter is returned when the converter binary cannot be found.
var ErrNoConverter = errors.New("export: pdf converter not found")

// PDFConverter feeds a rendered HTML report to an external command that
// writes the PDF: <command> [args...] <input.html> <output.pdf>.
type PDFConverter struct {
	Command string
	Args    []string
}

// PDF renders t to HTML and converts it, writing the PDF bytes to w.
func (c PDFConverter) PDF(ctx context.Context, w io.Writer, t Table, opts HTMLOptions) error {
	command := c.Command
	if command == "" {
		command = DefaultPDFCommand
	}
	bin, err := exec.LookPath(command)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoConverter, command)
	}

	dir, err := os.MkdirTemp("", "formwizard-export-")
	if err != nil {
		return fmt.Errorf("export: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	var page bytes.Buffer
	if err := HTML(&page, t, opts); err != nil {
		return err
	}
	input := filepath.Join(dir, "report.html")
	output := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(input, page.Bytes(), 0o600); err != nil {
		return fmt.Errorf("export: write html: %w", err)
	}

	args := append(append([]string(nil), c.Args...), input, output)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("export: %s: %w: %s", command, err, bytes.TrimSpace(stderr.Bytes()))
	}

	f, err := os.Open(output)
	if err != nil {
		return fmt.Errorf("export: read pdf: %w", err)
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
