// Command fdtdump loads a DTB image and prints it, or checks its header
// without fully decoding the structure block.
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scigolib/fdt"
)

type logLevelFlag struct {
	logrus.Level
}

func (f *logLevelFlag) Type() string { return "loglevel" }
func (f *logLevelFlag) Set(s string) error {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return err
	}
	f.Level = lvl
	return nil
}

var _ pflag.Value = (*logLevelFlag)(nil)

func main() {
	log := logrus.New()
	logLevel := logLevelFlag{Level: logrus.InfoLevel}

	root := &cobra.Command{
		Use:           "fdtdump",
		Short:         "Inspect Flattened Device Tree (DTB) images",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLevel(logLevel.Level)
		},
	}
	root.PersistentFlags().Var(&logLevel, "verbosity", "log level: trace, debug, info, warn, error")

	var raw bool
	dumpCmd := &cobra.Command{
		Use:   "dump <file.dtb>",
		Short: "Parse a DTB file and print its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			log.WithField("bytes", len(buf)).Debug("read dtb image")

			dt, err := fdt.Load(buf)
			if err != nil {
				return fmt.Errorf("loading %s: %w", args[0], err)
			}
			log.WithFields(logrus.Fields{
				"version":         dt.Version,
				"boot_cpuid_phys": dt.BootCPUIDPhys,
				"reserved":        len(dt.Reserved),
			}).Info("parsed device tree")

			if raw {
				spew.Dump(dt)
				return nil
			}
			printNode(&dt.Root, 0)
			return nil
		},
	}
	dumpCmd.Flags().BoolVar(&raw, "raw", false, "dump the parsed tree with go-spew instead of the human-readable listing")
	root.AddCommand(dumpCmd)

	checkCmd := &cobra.Command{
		Use:   "check <file.dtb>",
		Short: "Validate a DTB header without decoding the structure block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			if len(buf) < 24 {
				return fmt.Errorf("%s: %d byte(s) is too short for a DTB header", args[0], len(buf))
			}
			switch {
			case binary.BigEndian.Uint32(buf[0:4]) != 0xd00dfeed:
				return fmt.Errorf("%s: %w", args[0], fdt.ErrInvalidMagicNumber)
			case int(binary.BigEndian.Uint32(buf[4:8])) != len(buf):
				return fmt.Errorf("%s: %w", args[0], fdt.ErrSizeMismatch)
			case binary.BigEndian.Uint32(buf[20:24]) != 17:
				return fmt.Errorf("%s: %w", args[0], fdt.ErrVersionNotSupported)
			}
			fmt.Printf("%s: ok\n", args[0])
			return nil
		},
	}
	root.AddCommand(checkCmd)

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func printNode(n *fdt.Node, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "    "
	}
	name := n.Name
	if name == "" && depth == 0 {
		name = "/"
	}
	fmt.Printf("%s%s {\n", indent, name)
	for _, p := range n.Props {
		fmt.Printf("%s    %s; // %d byte(s)\n", indent, p.Name, len(p.Value))
	}
	for i := range n.Children {
		printNode(&n.Children[i], depth+1)
	}
	fmt.Printf("%s};\n", indent)
}
