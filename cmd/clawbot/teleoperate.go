package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/clawbot/pkg/control"
	"github.com/gwillem/clawbot/pkg/joystick"
	"github.com/gwillem/clawbot/pkg/robot"
	"github.com/gwillem/clawbot/pkg/teleop"
)

type TeleoperateCommand struct {
	Hz         int    `long:"hz" description:"Control loop frequency (default from config)"`
	Arm        string `long:"arm" choice:"analog" choice:"buttons" description:"Arm control scheme"`
	FilterStep int    `long:"filter-step" description:"Largest drive speed change per cycle"`
	Device     string `long:"device" description:"Joystick device"`
	Sim        bool   `long:"sim" description:"Simulated motors, drive with the keyboard"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + mode row
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Channel colors - distinct colors for each motor
var channelColors = map[robot.Channel]string{
	robot.FrontLeft:  "196", // red
	robot.FrontRight: "208", // orange
	robot.BackLeft:   "226", // yellow
	robot.BackRight:  "46",  // green
	robot.LeftArm:    "51",  // cyan
	robot.RightArm:   "33",  // blue
	robot.Claw:       "201", // magenta
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	badgeStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

type teleopModel struct {
	ctrl         *teleop.Controller
	keypad       *joystick.KeyPad // nil unless driving from the keyboard
	chart        *streamlinechart.Model
	width        int // terminal width
	height       int // terminal height
	logs         []string
	quitting     bool
	state        teleop.State
	lastCommands control.Commands
}

func (m *teleopModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// hasChange reports whether any command differs from the last charted one.
func (m *teleopModel) hasChange(cmds control.Commands) bool {
	if m.lastCommands == nil {
		return true
	}
	for ch, v := range cmds {
		if last, ok := m.lastCommands[ch]; !ok || v != last {
			return true
		}
	}
	return false
}

// Messages from the controller
type stateMsg teleop.State
type logMsg string

func waitForState(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *teleopModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if m.keypad != nil {
		height--
	}
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m *teleopModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialTeleopModel(ctrl *teleop.Controller, keypad *joystick.KeyPad) teleopModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-robot.MaxSpeed, robot.MaxSpeed),
	)

	for _, ch := range robot.AllChannels() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(channelColors[ch]))
		chart.SetDataSetStyles(string(ch), runes.ThinLineStyle, style)
	}

	return teleopModel{
		ctrl:   ctrl,
		keypad: keypad,
		chart:  &chart,
	}
}

func (m teleopModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
	)
}

func (m teleopModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case " ":
			if m.keypad != nil {
				m.keypad.Release()
			}
		default:
			if m.keypad != nil {
				m.keypad.Press(key)
			}
		}

	case stateMsg:
		m.state = teleop.State(msg)
		if cmds := m.state.Commands; cmds != nil && m.hasChange(cmds) {
			// Only update chart on change (freeze when idle)
			for ch, v := range cmds {
				m.chart.PushDataSet(string(ch), float64(v))
			}
			m.chart.DrawAll()
			m.lastCommands = cmds
		}
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m teleopModel) View() string {
	if m.quitting {
		return "Operator control stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Clawbot Operator Control"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.ctrl.Hz()))
	if m.keypad != nil {
		sb.WriteString(statusStyle.Render("  [sim]"))
	}
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend(m.state.Commands))
	sb.WriteString("\n")
	sb.WriteString(renderModes(m.state))
	sb.WriteString("\n")
	if m.keypad != nil {
		sb.WriteString(renderKeys(m.keypad.Bindings()))
		sb.WriteString("\n")
	}

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend(cmds control.Commands) string {
	var items []string
	for _, ch := range robot.AllChannels() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(channelColors[ch])).Bold(true)
		item := colorStyle.Render("━━") + " " + fmt.Sprintf("%s %4d", ch, cmds[ch])
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func renderModes(s teleop.State) string {
	speed := badgeStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Render("FULL SPEED")
	if s.LowSpeed {
		speed = badgeStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")).Render("LOW SPEED")
	}

	phase := s.ClawPhase
	if phase == "" {
		phase = control.ClawIdle
	}
	claw := badgeStyle.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("201")).
		Render(fmt.Sprintf("CLAW %s", strings.ToUpper(string(phase))))

	filled := s.ClawProgress * 20 / control.ClawOpenDuration
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)

	out := speed + " " + claw + " " + statusStyle.Render(bar)
	if s.Error != nil {
		out += " " + badgeStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Render("WRITE ERROR")
	}
	return out
}

func renderKeys(bindings []joystick.KeyBinding) string {
	items := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		items = append(items, titleStyle.Render(b.Key)+" "+b.Help)
	}
	items = append(items, titleStyle.Render("space")+" release")
	return statusStyle.Render(strings.Join(items, "  "))
}

// loadConfig loads the configuration and applies command line overrides.
func (c *TeleoperateCommand) loadConfig() (*robot.Config, error) {
	path := configPath()
	cfg, err := robot.LoadConfigFrom(path)
	switch {
	case err == nil:
		fmt.Printf("Loaded configuration from %s\n", path)
	case c.Sim && errors.Is(err, os.ErrNotExist):
		cfg = robot.DefaultConfig()
	default:
		return nil, err
	}

	if c.Hz > 0 {
		cfg.Hz = c.Hz
	}
	if c.Arm != "" {
		cfg.ArmScheme = c.Arm
	}
	if c.FilterStep > 0 {
		cfg.FilterStep = c.FilterStep
	}
	if c.Device != "" {
		cfg.Joystick.Device = c.Device
	}
	if c.Sim {
		cfg.Motors.Backend = robot.BackendSim
	}
	return cfg, cfg.Validate()
}

func (c *TeleoperateCommand) Execute(args []string) error {
	cfg, err := c.loadConfig()
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "No configuration found. Run 'clawbot setup' first, or use --sim.")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	motors, err := robot.OpenMotors(ctx, cfg.Motors)
	if err != nil {
		log.Fatalf("Failed to open motors: %v", err)
	}

	var (
		input  teleop.Source
		keypad *joystick.KeyPad
		pad    *joystick.Pad
		js     *joystick.Joystick
	)
	if c.Sim {
		keypad = joystick.NewKeyPad(cfg.ArmScheme, 0)
		input = keypad
	} else {
		js, err = joystick.Open(cfg.Joystick.Device)
		if err != nil {
			motors.Close()
			log.Fatalf("Failed to open joystick: %v", err)
		}
		defer js.Close()
		pad = joystick.NewPad(joystick.DefaultMapping(robot.DriverJoystick))
		input = pad
	}

	ctrl, err := teleop.NewController(teleop.Config{
		Input:      input,
		Motors:     motors,
		Hz:         cfg.Hz,
		ArmScheme:  cfg.ArmScheme,
		FilterStep: cfg.FilterStep,
	})
	if err != nil {
		motors.Close()
		log.Fatalf("Failed to create controller: %v", err)
	}
	defer ctrl.Close()

	p := tea.NewProgram(initialTeleopModel(ctrl, keypad), tea.WithAltScreen())

	if pad != nil {
		go func() {
			if err := pad.Run(ctx, js); err != nil {
				p.Send(logMsg(fmt.Sprintf("Joystick: %v", err)))
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Controller error: %v", err)
		}
	}()

	_, err = p.Run()

	// Stop the loop so the motors are zeroed before they are closed.
	cancel()
	<-done

	if err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
