// Package main is the urdfinfo command: it parses a URDF file with its mesh
// assets and prints the resulting links, joints and geometry summary.
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/roboviz/urdfkit/scene"
	"github.com/roboviz/urdfkit/urdf"
)

const (
	flagPackage = "package"
	flagSet     = "set"
	flagDebug   = "debug"
)

func main() {
	app := &cli.App{
		Name:      "urdfinfo",
		Usage:     "inspect a URDF robot description and its mesh assets",
		ArgsUsage: "<robot.urdf>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  flagPackage,
				Usage: "package mapping as name=path; repeatable, use name 'default' for the fallback",
			},
			&cli.StringSliceFlag{
				Name:  flagSet,
				Usage: "joint angle to apply as joint=radians; repeatable",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Action: runInfo,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runInfo(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one URDF file argument")
	}
	logger := golog.NewLogger("urdfinfo")
	if c.Bool(flagDebug) {
		logger = golog.NewDebugLogger("urdfinfo")
	}

	packages, err := parsePackageFlags(c.StringSlice(flagPackage))
	if err != nil {
		return err
	}
	robot, err := urdf.ParseFile(c.Args().First(), packages, logger)
	if err != nil {
		return err
	}

	angles, err := parseSetFlags(c.StringSlice(flagSet))
	if err != nil {
		return err
	}
	if err := robot.SetAngles(angles); err != nil {
		return err
	}

	printRobot(robot)
	return nil
}

func parsePackageFlags(entries []string) (urdf.PackageMap, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	packages := urdf.PackageMap{}
	for _, entry := range entries {
		name, path, ok := strings.Cut(entry, "=")
		if !ok || name == "" || path == "" {
			return nil, errors.Errorf("invalid package mapping %q, want name=path", entry)
		}
		packages[name] = path
	}
	return packages, nil
}

func parseSetFlags(entries []string) (map[string]float64, error) {
	angles := map[string]float64{}
	for _, entry := range entries {
		name, raw, ok := strings.Cut(entry, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid joint angle %q, want joint=radians", entry)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid angle for joint %q", name)
		}
		angles[name] = value
	}
	return angles, nil
}

func printRobot(robot *urdf.Robot) {
	fmt.Printf("robot %q: %d links, %d joints (%d drivable)\n",
		robot.Name, len(robot.Links), len(robot.Joints), robot.AvailableJointCount())

	names := make([]string, 0, len(robot.Joints))
	for name := range robot.Joints {
		names = append(names, name)
	}
	sort.Strings(names)
	angles := robot.Angles()
	for _, name := range names {
		joint := robot.Joints[name]
		line := fmt.Sprintf("joint %-24s %-11s", name, joint.Type)
		switch joint.Type {
		case urdf.RevoluteJoint, urdf.PrismaticJoint:
			line += fmt.Sprintf(" limits [%g, %g]", joint.Lower, joint.Upper)
		}
		if joint.MimicTarget != "" {
			line += fmt.Sprintf(" mimics %s (x%g %+g)", joint.MimicTarget, joint.Multiplier, joint.Offset)
		}
		if angle, ok := angles[name]; ok {
			line += fmt.Sprintf(" angle %g", angle)
		}
		fmt.Println(line)
	}

	robot.Walk(func(v scene.Visit) bool {
		if v.Mesh == nil {
			return true
		}
		fmt.Printf("mesh  %-24s %d triangles at (%.3f, %.3f, %.3f)\n",
			v.Node.Name, v.Mesh.TriangleCount(), v.Position.X, v.Position.Y, v.Position.Z)
		return true
	})
}
