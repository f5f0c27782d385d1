package generator

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"
)

// fileGenerator replays recorded 2D signals from a frame file: a
// sequence of length-prefixed (big-endian uint32) matrix blobs in
// gonum binary encoding. Unlike the synthetic variants it exhausts,
// after which Next fails loudly rather than returning stale data.
type fileGenerator struct {
	path       string
	file       *os.File
	reader     *bufio.Reader
	rows, cols int
	good       bool
}

func newFileGenerator(path string) *fileGenerator {
	g := &fileGenerator{path: path}
	file, err := os.Open(path)
	if err != nil {
		return g
	}
	g.file = file
	g.reader = bufio.NewReader(file)
	g.good = true
	return g
}

func (g *fileGenerator) SetShape(rows, cols int) error {
	if err := validShape(rows, cols); err != nil {
		return err
	}
	g.rows, g.cols = rows, cols
	return nil
}

func (g *fileGenerator) Shape() (int, int) { return g.rows, g.cols }

func (g *fileGenerator) Good() bool { return g.good }

func (g *fileGenerator) Next() (*mat.Dense, error) {
	if !g.good {
		return nil, fmt.Errorf("file generator %s is not ready", g.path)
	}

	var length uint32
	if err := binary.Read(g.reader, binary.BigEndian, &length); err != nil {
		if err == io.EOF {
			return nil, ErrExhausted
		}
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	blob := make([]byte, length)
	if _, err := io.ReadFull(g.reader, blob); err != nil {
		return nil, fmt.Errorf("failed to read frame body: %w", err)
	}

	var m mat.Dense
	if err := m.UnmarshalBinary(blob); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	rows, cols := m.Dims()
	if g.rows != 0 && (rows != g.rows || cols != g.cols) {
		return nil, fmt.Errorf("frame shape %dx%d does not match configured %dx%d", rows, cols, g.rows, g.cols)
	}
	return &m, nil
}

func (g *fileGenerator) Close() error {
	if g.file == nil {
		return nil
	}
	err := g.file.Close()
	g.file = nil
	g.good = false
	return err
}

// WriteFrames records matrices in the frame-file format consumed by
// the file generator.
func WriteFrames(w io.Writer, frames []*mat.Dense) error {
	for _, frame := range frames {
		blob, err := frame.MarshalBinary()
		if err != nil {
			return fmt.Errorf("failed to encode frame: %w", err)
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(blob))); err != nil {
			return fmt.Errorf("failed to write frame header: %w", err)
		}
		if _, err := w.Write(blob); err != nil {
			return fmt.Errorf("failed to write frame body: %w", err)
		}
	}
	return nil
}
