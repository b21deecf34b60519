package courses

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// capturePage saves the active page's HTML and a screenshot under the
// debug directory, tagged by discovery area. Best effort, and a no-op
// unless debug artifacts are enabled.
func (f *Finder) capturePage(area string) {
	if !f.cfg.Debug.Enabled {
		return
	}

	dir := filepath.Join(f.cfg.Debug.Dir, "discovery")
	if err := os.MkdirAll(dir, 0750); err != nil {
		f.log.Warnf("could not create discovery capture directory: %v", err)
		return
	}

	stamp := time.Now().Format("20060102_150405")

	if html, err := f.session.Content(); err == nil {
		htmlPath := filepath.Join(dir, area+"_"+stamp+".html")
		if err := os.WriteFile(htmlPath, []byte(html), 0644); err == nil {
			f.log.Infof("%s page HTML saved: %s", area, htmlPath)
		}
	}

	shotPath := filepath.Join(dir, area+"_"+stamp+".png")
	if err := f.session.Screenshot(shotPath); err == nil {
		f.log.Infof("%s page screenshot saved: %s", area, shotPath)
	}
}

// writeReport drops the discovery report next to the other debug
// artifacts so a run's findings survive past the process.
func (f *Finder) writeReport(list *CourseList) {
	if !f.cfg.Debug.Enabled {
		return
	}

	if err := os.MkdirAll(f.cfg.Debug.Dir, 0750); err != nil {
		f.log.Warnf("could not create debug directory: %v", err)
		return
	}

	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(f.cfg.Debug.Dir, "discovery_report_"+stamp+".json")

	data, err := json.MarshalIndent(list.Report(), "", "  ")
	if err != nil {
		f.log.Warnf("could not encode discovery report: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		f.log.Warnf("could not write discovery report: %v", err)
		return
	}
	f.log.Infof("discovery report saved: %s", path)
}
