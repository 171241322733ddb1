package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/clawbot/pkg/robot"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Servo IDs scanned for on each bus, one per channel.
const (
	scanMinID = 1
	scanMaxID = 7
)

type SetupCommand struct {
	Port    string `long:"port" description:"Serial port of the servo bus (default: scan all ports)"`
	PCA9685 bool   `long:"pca9685" description:"Configure a PCA9685 PWM board instead of a servo bus"`
	I2C     string `long:"i2c" default:"/dev/i2c-1" description:"I2C device of the PCA9685"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Clawbot Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━"))
	fmt.Println()

	path := configPath()
	cfg, err := robot.LoadConfigFrom(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
			os.Exit(1)
		}
		cfg = robot.DefaultConfig()
	}

	if c.PCA9685 {
		setupPWM(cfg, c.I2C)
	} else {
		setupServoBus(cfg, c.Port)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration incomplete: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.SaveTo(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", path)
	fmt.Println()
	fmt.Println("Start operator control with: " + headerStyle.Render("clawbot teleoperate"))

	return nil
}

func setupPWM(cfg *robot.Config, device string) {
	cfg.Motors.Backend = robot.BackendPCA9685
	cfg.Motors.PCA9685.Device = device
	if len(cfg.Motors.PCA9685.Ports) == 0 {
		cfg.Motors.PCA9685.Ports = robot.DefaultPWMPorts()
	}

	fmt.Printf("PCA9685 on %s, address %#x\n\n", device, cfg.Motors.PCA9685.Address)
	fmt.Println(renderChannelTable(cfg))
	fmt.Println(dimStyle.Render("Edit the ports in the configuration file if your wiring differs."))
}

func setupServoBus(cfg *robot.Config, port string) {
	if port == "" {
		port = scanForBus()
	}

	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Assigning Servos ━━━"))
	fmt.Println()

	bus, servos, err := connectToBus(port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s: %v\n", port, err)
		os.Exit(1)
	}
	defer bus.Close()

	assigned := assignChannels(bus, servos)
	if len(assigned) != len(robot.AllChannels()) {
		fmt.Fprintf(os.Stderr, "Only %d of %d channels assigned.\n", len(assigned), len(robot.AllChannels()))
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Calibrating Ranges ━━━"))
	fmt.Println()
	calibration := calibrateRanges(assigned)

	cfg.Motors.Backend = robot.BackendFeetech
	cfg.Motors.Feetech.Port = port
	cfg.Motors.Feetech.Servos = calibration
}

// channelServo is a bus servo assigned to a channel.
type channelServo struct {
	id    int
	servo *feetech.Servo
}

type busInfo struct {
	port   string
	servos []feetech.FoundServo
}

// scanForBus returns the serial port carrying the clawbot's servos.
func scanForBus() string {
	fmt.Println("Scanning serial ports for servos...")
	fmt.Println()

	buses := findBuses()
	switch len(buses) {
	case 0:
		fmt.Println("No servos found.")
		fmt.Println("Make sure the servo bus is connected and powered on.")
		os.Exit(1)
	case 1:
		return buses[0].port
	}

	var options []huh.Option[string]
	for _, b := range buses {
		label := fmt.Sprintf("%s (%d servos)", b.port, len(b.servos))
		options = append(options, huh.NewOption(label, b.port))
	}

	var port string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which bus drives the clawbot?").
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return port
}

func findBuses() []busInfo {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var buses []busInfo
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		bus, err := robot.OpenFeetechBus(port)
		if err != nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		servos, err := bus.Scan(ctx, scanMinID, scanMaxID)
		cancel()
		bus.Close()

		if err != nil || len(servos) == 0 {
			continue
		}
		fmt.Printf("  Found %d servo(s) on %s\n", len(servos), port)
		buses = append(buses, busInfo{port: port, servos: servos})
	}
	return buses
}

func connectToBus(port string) (*feetech.Bus, []feetech.FoundServo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	bus, err := robot.OpenFeetechBus(port)
	if err != nil {
		return nil, nil, err
	}

	servos, err := bus.Scan(ctx, scanMinID, scanMaxID)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	if len(servos) < len(robot.AllChannels()) {
		bus.Close()
		return nil, nil, fmt.Errorf("found %d servos, need %d (IDs %d-%d)",
			len(servos), len(robot.AllChannels()), scanMinID, scanMaxID)
	}
	return bus, servos, nil
}

// assignChannels wiggles each servo and asks which channel it drives.
func assignChannels(bus *feetech.Bus, servos []feetech.FoundServo) map[robot.Channel]channelServo {
	assigned := make(map[robot.Channel]channelServo)

	for _, s := range servos {
		servo := feetech.NewServo(bus, s.ID, s.Model)
		wiggle(servo, s.ID)

		var options []huh.Option[string]
		for _, ch := range robot.AllChannels() {
			if _, taken := assigned[ch]; !taken {
				options = append(options, huh.NewOption(string(ch), string(ch)))
			}
		}
		options = append(options, huh.NewOption("Skip this servo", "skip"))

		var choice string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title(fmt.Sprintf("Which motor is servo %d?", s.ID)).
					Description("The servo that just wiggled").
					Options(options...).
					Value(&choice),
			),
		)
		if err := form.Run(); err != nil {
			fmt.Println()
			os.Exit(0)
		}

		if choice != "skip" {
			assigned[robot.Channel(choice)] = channelServo{id: s.ID, servo: servo}
		}
		if len(assigned) == len(robot.AllChannels()) {
			break
		}
	}
	return assigned
}

func wiggle(servo *feetech.Servo, id int) {
	ctx := context.Background()

	originalPos, err := servo.Position(ctx)
	if err != nil {
		fmt.Printf("  Error reading servo %d: %v\n", id, err)
		return
	}
	if err := servo.Enable(ctx); err != nil {
		fmt.Printf("  Error enabling servo %d: %v\n", id, err)
		return
	}
	defer servo.Disable(ctx)

	fmt.Printf("\n  Wiggling servo %d...\n", id)

	wiggleAmount := 30
	moveTimeMs := 500
	for _, pos := range []int{originalPos + wiggleAmount, originalPos - wiggleAmount, originalPos} {
		servo.SetPositionWithTime(ctx, pos, moveTimeMs)
		time.Sleep(time.Duration(moveTimeMs+100) * time.Millisecond)
	}
}

// calibrateRanges records the travel range of every channel while the user
// moves the motors by hand.
func calibrateRanges(servos map[robot.Channel]channelServo) robot.Calibration {
	ctx := context.Background()
	for _, s := range servos {
		s.servo.Disable(ctx)
	}

	fmt.Println(subHeaderStyle.Render("Record range of motion"))
	fmt.Println("Move every wheel, the arm and the claw through their full travel.")
	fmt.Println()

	channels := robot.AllChannels()
	curPositions := make(map[robot.Channel]int)
	minPositions := make(map[robot.Channel]int)
	maxPositions := make(map[robot.Channel]int)
	for _, ch := range channels {
		pos, _ := servos[ch].servo.Position(ctx)
		curPositions[ch] = pos
		minPositions[ch] = pos
		maxPositions[ch] = pos
	}

	model := newCalibrationModel(channels, servos, curPositions, minPositions, maxPositions)
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running calibration: %v\n", err)
		os.Exit(1)
	}
	cm := finalModel.(calibrationModel)

	calibration := make(robot.Calibration, len(channels))
	for _, ch := range channels {
		calibration[ch] = robot.ServoCalibration{
			ID:       servos[ch].id,
			RangeMin: cm.minPositions[ch],
			RangeMax: cm.maxPositions[ch],
		}
	}
	return calibration
}

// Calibration TUI model
type calibrationModel struct {
	channels     []robot.Channel
	servos       map[robot.Channel]channelServo
	curPositions map[robot.Channel]int
	minPositions map[robot.Channel]int
	maxPositions map[robot.Channel]int
	quitting     bool
}

type tickMsg time.Time

func newCalibrationModel(
	channels []robot.Channel,
	servos map[robot.Channel]channelServo,
	curPositions, minPositions, maxPositions map[robot.Channel]int,
) calibrationModel {
	return calibrationModel{
		channels:     channels,
		servos:       servos,
		curPositions: curPositions,
		minPositions: minPositions,
		maxPositions: maxPositions,
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m calibrationModel) Init() tea.Cmd {
	return tick()
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		ctx := context.Background()
		for _, ch := range m.channels {
			pos, err := m.servos[ch].servo.Position(ctx)
			if err != nil {
				continue
			}
			m.record(ch, pos)
		}
		return m, tick()
	}

	return m, nil
}

func (m calibrationModel) record(ch robot.Channel, pos int) {
	m.curPositions[ch] = pos
	if pos < m.minPositions[ch] {
		m.minPositions[ch] = pos
	}
	if pos > m.maxPositions[ch] {
		m.maxPositions[ch] = pos
	}
}

// minGoodRange is the travel below which a recorded range is flagged.
const minGoodRange = 200

func (m calibrationModel) View() string {
	if m.quitting {
		return ""
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableChannelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableCurrentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
	tableRangeGoodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableRangeLowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	rows := make([][]string, 0, len(m.channels))
	ranges := make([]int, 0, len(m.channels))
	for _, ch := range m.channels {
		rangeSize := m.maxPositions[ch] - m.minPositions[ch]
		ranges = append(ranges, rangeSize)
		rows = append(rows, []string{
			string(ch),
			fmt.Sprintf("%d", m.servos[ch].id),
			fmt.Sprintf("%d", m.curPositions[ch]),
			fmt.Sprintf("%d", m.minPositions[ch]),
			fmt.Sprintf("%d", m.maxPositions[ch]),
			fmt.Sprintf("%d", rangeSize),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Channel", "ID", "Current", "Min", "Max", "Range").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableChannelStyle
			case 2:
				return tableCurrentStyle
			case 5:
				if row >= 0 && row < len(ranges) && ranges[row] > minGoodRange {
					return tableRangeGoodStyle
				}
				return tableRangeLowStyle
			default:
				return tableCellStyle
			}
		})

	return t.Render() + "\n\n" + dimStyle.Render("Press Enter when done")
}
