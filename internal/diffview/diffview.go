// Package diffview renders a human-readable, YAML-aware diff between two
// versions of the same kind of document — two archetype-resolved rig
// configs, or two published-scene manifests — for `rigforge rig diff`.
//
// Uses the same dyff integration pattern (parse both sides as YAML, render
// a dyff report) generalized from "live vs desired Kubernetes resource" to
// "two named byte blobs" since rigforge has no cluster to compare against.
package diffview

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
)

// Result is the outcome of comparing two documents.
type Result struct {
	// Changed is false when the two documents are semantically identical.
	Changed bool

	// Report is the rendered human diff, empty when Changed is false.
	Report string
}

// Compare renders a semantic diff between leftName/left and
// rightName/right, both YAML or JSON bytes describing the same kind of
// document. useColor enables dyff's ANSI table styling.
func Compare(leftName string, left []byte, rightName string, right []byte, useColor bool) (Result, error) {
	leftInput, err := parseInput(leftName, left)
	if err != nil {
		return Result{}, fmt.Errorf("parsing %s: %w", leftName, err)
	}
	rightInput, err := parseInput(rightName, right)
	if err != nil {
		return Result{}, fmt.Errorf("parsing %s: %w", rightName, err)
	}

	report, err := dyff.CompareInputFiles(leftInput, rightInput)
	if err != nil {
		return Result{}, fmt.Errorf("comparing %s and %s: %w", leftName, rightName, err)
	}
	if len(report.Diffs) == 0 {
		return Result{Changed: false}, nil
	}

	rendered, err := renderReport(report, useColor)
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Report: rendered}, nil
}

func parseInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ytbx.InputFile{Location: name}, nil
	}
	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}
	return ytbx.InputFile{Location: name, Documents: docs}, nil
}

func renderReport(report dyff.Report, useColor bool) (string, error) {
	var buf bytes.Buffer
	writer := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}
	if err := writer.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
