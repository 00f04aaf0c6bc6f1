package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

// Reports are multi-section plain text blocks (ingest summaries, render
// descriptions) written to a dedicated file so the structured log stays
// scannable. Nothing is written until SetReportWriter is called.

var (
	reportMu  sync.Mutex
	reportLog *log.Logger
)

func SetReportWriter(w io.Writer) {
	reportMu.Lock()
	defer reportMu.Unlock()
	if w == nil {
		reportLog = nil
		return
	}
	reportLog = log.New(w, "", log.LstdFlags)
}

type ReportSection struct {
	Title string
	Body  string
}

func LogReport(kind, subject string, sections []ReportSection) {
	reportMu.Lock()
	logger := reportLog
	reportMu.Unlock()
	if logger == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[REPORT]")
	if kind != "" {
		b.WriteString("[")
		b.WriteString(kind)
		b.WriteString("]")
	}
	if subject != "" {
		b.WriteString("[")
		b.WriteString(subject)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(t)
		b.WriteString(" ---\n")
		body := sec.Body
		b.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	logger.Print(b.String())
}
