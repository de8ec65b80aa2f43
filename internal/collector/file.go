package collector

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/auditsheet/internal/checklist"
	"github.com/nao1215/auditsheet/internal/model"
)

// ResponseFile is the YAML form of a filled-in checklist, used when the
// audit is recorded outside the interactive form.
//
//	auditor: Jane Doe
//	date: 2024-01-15
//	notes: Follow-up visit planned.
//	responses:
//	  a1:
//	    status: confirmed
//	    comment: ok, see log
type ResponseFile struct {
	Checklist string                 `yaml:"checklist,omitempty"`
	Auditor   string                 `yaml:"auditor"`
	Date      string                 `yaml:"date"`
	Notes     string                 `yaml:"notes,omitempty"`
	Responses map[string]FileResponse `yaml:"responses"`
}

// FileResponse is one entry of ResponseFile.Responses.
type FileResponse struct {
	Status  string `yaml:"status"`
	Comment string `yaml:"comment"`
	// Title is informational only; it is written by Skeleton to help the
	// person filling in the file and ignored when applying.
	Title string `yaml:"title,omitempty"`
}

// ParseResponses reads a ResponseFile from YAML.
func ParseResponses(data []byte) (*ResponseFile, error) {
	var rf ResponseFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse responses file: %w", err)
	}
	return &rf, nil
}

// LoadResponses reads a ResponseFile from disk.
func LoadResponses(path string) (*ResponseFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided responses path is intentional
	if err != nil {
		return nil, err
	}
	return ParseResponses(data)
}

// Apply records every response into c and returns the audit header.
// Responses are applied in checklist order; an id that is not part of the
// checklist fails with *UnknownItemError and nothing is applied.
// A missing or malformed date yields a zero header date, which the record
// builder reports as missing.
func (rf *ResponseFile) Apply(c *Collector) (model.Header, error) {
	for id := range rf.Responses {
		if !c.Definition().Has(id) {
			return model.Header{}, &UnknownItemError{Checklist: c.Definition().Name(), ItemID: id}
		}
	}

	for _, e := range c.Definition().Entries() {
		fr, ok := rf.Responses[e.Item.ID]
		if !ok {
			continue
		}
		if err := c.Set(e.Item.ID, model.Status(strings.TrimSpace(fr.Status)), fr.Comment); err != nil {
			return model.Header{}, err
		}
	}

	header := model.Header{
		Auditor: strings.TrimSpace(rf.Auditor),
		Notes:   rf.Notes,
	}
	if d := strings.TrimSpace(rf.Date); d != "" {
		date, err := model.ParseDate(d)
		if err != nil {
			return model.Header{}, fmt.Errorf("invalid audit date %q (want YYYY-MM-DD): %w", d, err)
		}
		header.Date = date
	}

	return header, nil
}

// Skeleton returns a blank ResponseFile for def with today's date, ready
// to be filled in.
func Skeleton(def *checklist.Definition, today time.Time) *ResponseFile {
	rf := &ResponseFile{
		Checklist: def.Name(),
		Date:      today.Format(model.DateLayout),
		Responses: make(map[string]FileResponse, def.Len()),
	}
	for _, e := range def.Entries() {
		rf.Responses[e.Item.ID] = FileResponse{Title: e.Item.Title}
	}
	return rf
}

// Marshal encodes the ResponseFile as YAML. Response keys are written in
// checklist order so the file reads like the checklist itself.
func (rf *ResponseFile) Marshal(def *checklist.Definition) ([]byte, error) {
	responses := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range def.Entries() {
		fr, ok := rf.Responses[e.Item.ID]
		if !ok {
			continue
		}
		var value yaml.Node
		if err := value.Encode(fr); err != nil {
			return nil, err
		}
		responses.Content = append(responses.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Item.ID, Style: yaml.DoubleQuotedStyle},
			&value,
		)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	appendScalar := func(key, value string) {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value},
		)
	}
	appendScalar("checklist", rf.Checklist)
	appendScalar("auditor", rf.Auditor)
	appendScalar("date", rf.Date)
	appendScalar("notes", rf.Notes)
	doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: "responses"}, responses)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode responses file: %w", err)
	}
	return out, nil
}
