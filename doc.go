// Package clawbot provides operator control for a skid-steer competition robot
// with a two-motor arm lift and a claw.
//
// The driver's joystick is read once every 20ms; the control policy shapes and
// mixes the sticks into four wheel speeds, slew-limits them, runs the claw
// close/grip/open sequence and drives the arm. Motor commands go to Feetech
// bus servos, a PCA9685 PWM board or an in-memory simulation.
//
// # Installation
//
//	go install github.com/gwillem/clawbot/cmd/clawbot@latest
//
// # Usage
//
// Detect the servos, assign them to motors and record their ranges:
//
//	clawbot setup
//
// or write a PWM port map for a PCA9685 board:
//
//	clawbot setup --pca9685
//
// Then start operator control:
//
//	clawbot teleoperate
//
// Without hardware, drive a simulated robot from the keyboard:
//
//	clawbot teleoperate --sim
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/clawbot: CLI with setup, teleoperate and info commands
//   - pkg/control: Control policy: shaping, mixing, filtering, claw and arm
//   - pkg/joystick: Joystick device reader and keyboard pad
//   - pkg/robot: Channels, configuration and motor backends
//   - pkg/pca9685: PCA9685 PWM board driver
//   - pkg/teleop: Operator control loop
package clawbot
