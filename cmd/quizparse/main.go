package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mind-engage/quizparse/internal/extract"
	"github.com/mind-engage/quizparse/internal/quiz"
)

func main() {
	input := flag.String("input", "", "Path to the quiz document (.docx, .pdf, .txt), or - for text on stdin")
	output := flag.String("output", "", "Path to output JSON file (optional, defaults to stdout)")
	diagnostics := flag.Bool("diagnostics", false, "Include dropped blocks in the output")
	verbose := flag.Bool("verbose", false, "Enable verbose output on stderr")
	flag.Parse()

	if *input == "" {
		fmt.Fprintf(os.Stderr, "Error: input file required\n")
		fmt.Fprintf(os.Stderr, "Usage: quizparse -input <file> [-output <json-file>] [-diagnostics] [-verbose]\n")
		os.Exit(1)
	}

	text, kind, err := readInput(context.Background(), *input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "Read %d bytes of %s text from %s\n", len(text), kind, *input)
	}

	rep := quiz.ParseReport(text)
	if *verbose {
		printStats(os.Stderr, rep)
	}
	if !*diagnostics {
		rep.Dropped = nil
	}

	if err := writeReport(rep, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func readInput(ctx context.Context, path string) (string, extract.Kind, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), extract.KindText, nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", "", fmt.Errorf("cannot read input file: %w", err)
	}
	return extract.New().ExtractFile(ctx, path)
}

func writeReport(rep quiz.Report, path string) error {
	out := struct {
		Questions []quiz.Question   `json:"questions"`
		Dropped   []quiz.Diagnostic `json:"dropped,omitempty"`
	}{rep.Questions, rep.Dropped}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Successfully wrote %d questions to: %s\n", len(rep.Questions), path)
	return nil
}

func printStats(w io.Writer, rep quiz.Report) {
	correct := 0
	for _, q := range rep.Questions {
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
		}
	}
	fmt.Fprintf(w, "Questions: %d\n", len(rep.Questions))
	fmt.Fprintf(w, "Correct answers: %d\n", correct)
	fmt.Fprintf(w, "Dropped blocks: %d\n", len(rep.Dropped))
	for _, d := range rep.Dropped {
		fmt.Fprintf(w, "  block %d: %s\n", d.Block, d.Reason)
	}
}
