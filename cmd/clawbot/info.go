package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/clawbot/pkg/robot"
)

type InfoCommand struct {
	Scan bool `long:"scan" description:"Also scan serial ports for servos"`
}

func (c *InfoCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Clawbot"))
	fmt.Println()

	path := configPath()
	cfg, err := robot.LoadConfigFrom(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Println(dimStyle.Render(fmt.Sprintf("No %s, showing defaults.", path)))
		cfg = robot.DefaultConfig()
	case err != nil:
		return err
	default:
		fmt.Printf("Configuration: %s\n", path)
	}

	fmt.Printf("Backend:       %s\n", cfg.Motors.Backend)
	fmt.Printf("Arm scheme:    %s\n", cfg.ArmScheme)
	fmt.Printf("Loop:          %d Hz, filter step %d\n", cfg.Hz, cfg.FilterStep)
	fmt.Printf("Joystick:      %s\n", cfg.Joystick.Device)
	if err := cfg.Validate(); err != nil {
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("Invalid: " + err.Error()))
	}
	fmt.Println()

	fmt.Println(subHeaderStyle.Render("Channels"))
	fmt.Println(renderChannelTable(cfg))
	fmt.Println()

	fmt.Println(subHeaderStyle.Render("Driver controls"))
	fmt.Println(renderControlsTable(cfg.ArmScheme))

	if c.Scan {
		fmt.Println()
		fmt.Println(subHeaderStyle.Render("Servo buses"))
		buses := findBuses()
		if len(buses) == 0 {
			fmt.Println(dimStyle.Render("No servos found."))
		}
		for _, b := range buses {
			for _, s := range b.servos {
				fmt.Printf("  %s: servo %d (model %v)\n", b.port, s.ID, s.Model)
			}
		}
	}
	return nil
}

func newTable() *table.Table {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	firstStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col == 0:
				return firstStyle
			default:
				return cellStyle
			}
		})
}

// renderChannelTable shows how each channel is wired for the selected backend.
func renderChannelTable(cfg *robot.Config) string {
	t := newTable()
	for _, ch := range robot.AllChannels() {
		switch cfg.Motors.Backend {
		case robot.BackendFeetech:
			sc, ok := cfg.Motors.Feetech.Servos[ch]
			if !ok {
				t.Row(string(ch), "-", "-", "-")
				continue
			}
			t.Row(string(ch), fmt.Sprintf("servo %d", sc.ID), fmt.Sprintf("%d-%d", sc.RangeMin, sc.RangeMax), yesNo(sc.Inverted))
		case robot.BackendPCA9685:
			b, ok := cfg.Motors.PCA9685.Ports[ch]
			if !ok {
				t.Row(string(ch), "-", "-", "-")
				continue
			}
			t.Row(string(ch), fmt.Sprintf("port %d", b.Port), "1-2 ms", yesNo(b.Inverted))
		default:
			t.Row(string(ch), "sim", "", "")
		}
	}
	return t.Headers("Channel", "Output", "Range", "Inverted").Render()
}

func renderControlsTable(armScheme string) string {
	t := newTable().Headers("Control", "Input")
	t.Row("drive", robot.DriveAxis.String())
	t.Row("turn", robot.TurnAxis.String())
	if armScheme == robot.ArmSchemeButtons {
		t.Row("arm up", robot.ButtonArmUp.String())
		t.Row("arm down", robot.ButtonArmDown.String())
	} else {
		t.Row("arm", fmt.Sprintf("%s while holding %s", robot.ArmAxis, robot.ButtonArmUp))
	}
	t.Row("low speed toggle", robot.ButtonLowSpeed.String())
	t.Row("claw toggle", robot.ButtonClawClose.String())
	t.Row("claw open", robot.ButtonClawOpen.String())
	return t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
