package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/howlsim/internal/closedloop"
	"github.com/san-kum/howlsim/internal/config"
	"github.com/san-kum/howlsim/internal/gain"
	"go.uber.org/zap"
)

const (
	historyCapacity = 120
	spectrumRows    = 6
)

// GainSaver persists the current gain; storage.GainStore implements it.
type GainSaver interface {
	SaveGain(g float64) error
	Path() string
}

type TunerConfig struct {
	Title        string
	Slider       config.SliderConf
	CoarseStepDB float64
	// Debounce is how long the slider has to rest before a recompute.
	Debounce time.Duration
	Saver    GainSaver
	Logger   *zap.Logger
}

func DefaultTunerConfig() TunerConfig {
	return TunerConfig{
		Title:        "HOWLSIM",
		Slider:       config.DefaultConfig().Slider,
		CoarseStepDB: 1,
		Debounce:     30 * time.Millisecond,
		Logger:       zap.NewNop(),
	}
}

// recomputeMsg fires after the debounce delay; stale sequence numbers are
// dropped.
type recomputeMsg struct{ seq int }

// Tuner is the bubbletea model of the gain slider.
type Tuner struct {
	ctrl *gain.Controller
	cfg  TunerConfig

	db      float64
	seq     int
	pending bool

	// snap is the last state that recomputed without error.
	snap    closedloop.Snapshot
	err     error
	notice  string
	history []float64

	width, height int
	canvas        *Canvas
}

func NewTuner(ctrl *gain.Controller, cfg TunerConfig) Tuner {
	if cfg.Slider.MaxDB <= 0 {
		cfg.Slider.MaxDB = config.DefaultSliderMaxDB
	}
	if cfg.Slider.StepDB <= 0 {
		cfg.Slider.StepDB = config.DefaultSliderStepDB
	}
	if cfg.CoarseStepDB <= 0 {
		cfg.CoarseStepDB = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	db := ctrl.Decibels()
	if math.IsInf(db, 0) {
		db = -cfg.Slider.MaxDB
	}
	t := Tuner{
		ctrl:   ctrl,
		cfg:    cfg,
		db:     cfg.Slider.Clamp(db),
		snap:   ctrl.Snapshot(),
		width:  80,
		height: 24,
		canvas: NewCanvas(36, 10),
	}
	t.record(t.snap)
	return t
}

func (t Tuner) Init() tea.Cmd { return nil }

func (t Tuner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return t.handleKey(msg)
	case tea.WindowSizeMsg:
		t.width, t.height = msg.Width, msg.Height
		return t, nil
	case recomputeMsg:
		if msg.seq != t.seq {
			return t, nil
		}
		t.pending = false
		snap, err := t.ctrl.SetDecibels(t.db)
		t.apply(snap, err)
		return t, nil
	}
	return t, nil
}

func (t Tuner) handleKey(msg tea.KeyMsg) (Tuner, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return t, tea.Quit
	case "left", "h":
		return t.move(-t.cfg.Slider.StepDB)
	case "right", "l":
		return t.move(t.cfg.Slider.StepDB)
	case "shift+left", "H":
		return t.move(-t.cfg.CoarseStepDB)
	case "shift+right", "L":
		return t.move(t.cfg.CoarseStepDB)
	case "0":
		return t.move(-t.db)
	case "i", "I":
		snap, err := t.ctrl.Invert(!t.ctrl.Inverted())
		t.apply(snap, err)
	case "s", "S":
		t.save()
	}
	return t, nil
}

// move shifts the slider and schedules a debounced recompute.
func (t Tuner) move(delta float64) (Tuner, tea.Cmd) {
	t.db = t.cfg.Slider.Clamp(math.Round((t.db+delta)*1e6) / 1e6)
	t.seq++
	t.pending = true
	seq := t.seq
	return t, tea.Tick(t.cfg.Debounce, func(time.Time) tea.Msg { return recomputeMsg{seq: seq} })
}

func (t *Tuner) apply(snap closedloop.Snapshot, err error) {
	if err != nil {
		t.err = err
		t.cfg.Logger.Debug("keeping last valid state", zap.Float64("db", t.db), zap.Error(err))
		return
	}
	t.err = nil
	t.snap = snap
	t.record(snap)
}

func (t *Tuner) record(snap closedloop.Snapshot) {
	v := snap.Verdict.MaxRealPart
	if !finite(v) {
		return
	}
	t.history = append(t.history, v)
	if len(t.history) > historyCapacity {
		t.history = t.history[len(t.history)-historyCapacity:]
	}
}

func (t *Tuner) save() {
	if t.cfg.Saver == nil {
		t.notice = "no gain file configured"
		return
	}
	g := t.snap.Gain
	if err := t.cfg.Saver.SaveGain(g); err != nil {
		t.err = err
		return
	}
	t.notice = fmt.Sprintf("saved g = %.6g to %s", g, t.cfg.Saver.Path())
	t.cfg.Logger.Info("gain saved", zap.Float64("gain", g), zap.String("path", t.cfg.Saver.Path()))
}

// Snapshot is the last valid closed-loop state shown by the UI.
func (t Tuner) Snapshot() closedloop.Snapshot { return t.snap }

// Err is the error of the latest rejected change, or nil.
func (t Tuner) Err() error { return t.err }

func (t Tuner) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(t.cfg.Title) + "  " + subtleStyle.Render("closed-loop gain tuning") + "\n\n")

	sign := "+"
	if t.ctrl.Inverted() {
		sign = "−"
	}
	s.WriteString(SliderBar(t.db, t.cfg.Slider.MaxDB, 41) + "\n")
	s.WriteString(labelStyle.Render("Slider") + valueStyle.Render(fmt.Sprintf("%s%.1f dB", sign, t.db)))
	if t.pending {
		s.WriteString(subtleStyle.Render("  …"))
	}
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Gain") + valueStyle.Render(fmt.Sprintf("%.6g (%.2f dB)", t.snap.Gain, gain.ToDecibels(t.snap.Gain))) + "\n")

	status := stableStyle.Render(t.snap.Verdict.Status.String())
	if !t.snap.Verdict.Stable() {
		status = unstableStyle.Render(t.snap.Verdict.Status.String())
	}
	s.WriteString(labelStyle.Render("Status") + status + "\n")
	s.WriteString(labelStyle.Render("Max Re") + valueStyle.Render(fmt.Sprintf("%.4g", t.snap.Verdict.MaxRealPart)) + "\n")
	if n := len(t.snap.Warnings); n > 0 {
		s.WriteString(labelStyle.Render("Branch") + errorStyle.Render(fmt.Sprintf("%d eigenvalue(s) on the negative real axis", n)) + "\n")
	}
	if t.err != nil {
		s.WriteString(errorStyle.Render("⚠ "+t.err.Error()) + "\n")
		s.WriteString(subtleStyle.Render("  showing last valid state") + "\n")
	} else if t.notice != "" {
		s.WriteString(subtleStyle.Render(t.notice) + "\n")
	}

	s.WriteString("\n" + t.spectrumTable())
	if len(t.history) > 1 {
		chart := asciigraph.Plot(t.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("max Re(λ)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString("\n" + keyHints("←/→", "±step", "⇧←/→", "±1 dB", "i", "invert", "s", "save", "q", "quit"))

	plane := DefaultSPlane().Fit(t.snap.Eigenvalues)
	plane.Draw(t.canvas, t.snap.Eigenvalues)
	canvasView := panelStyle.Render(t.canvas.String() + "\n" + subtleStyle.Render("s-plane  Re × Im[Hz]"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, "  ", s.String())
}

func (t Tuner) spectrumTable() string {
	var b strings.Builder
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%12s %12s", "Re", "f [Hz]")) + "\n")
	for i, ev := range t.snap.Eigenvalues {
		if i == spectrumRows {
			b.WriteString(subtleStyle.Render(fmt.Sprintf("  … %d more", len(t.snap.Eigenvalues)-spectrumRows)) + "\n")
			break
		}
		line := fmt.Sprintf("%12.4g %12.1f", real(ev), imag(ev)/(2*math.Pi))
		if real(ev) >= 0 || math.IsNaN(real(ev)) {
			b.WriteString(unstableStyle.Render(line) + "\n")
		} else {
			b.WriteString(valueStyle.Render(line) + "\n")
		}
	}
	return b.String()
}

// RunTuner runs the UI until the user quits.
func RunTuner(ctrl *gain.Controller, cfg TunerConfig) error {
	_, err := tea.NewProgram(NewTuner(ctrl, cfg), tea.WithAltScreen()).Run()
	return err
}
