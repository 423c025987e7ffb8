package report

import "path/filepath"

// DefaultPath names the report written next to the sections: the text
// analysis JSON when OCR ran, a YAML report otherwise.
func DefaultPath(outputDir, base string, withText bool) string {
	if withText {
		return filepath.Join(outputDir, base+"_text_analysis.json")
	}
	return filepath.Join(outputDir, base+"_report.yaml")
}
