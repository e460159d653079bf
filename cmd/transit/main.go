package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/zoobzio/transit"
	"github.com/zoobzio/transit/internal/tui"
)

var (
	easingName  string
	duration    time.Duration
	delay       time.Duration
	steps       int
	curveSteps  int
	from        string
	to          string
	selectors   string
	specFile    string
	key         string
	watchFile   string
	accelerated bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "transit",
		Short: "inspect and play value transitions",
	}

	curveCmd := &cobra.Command{
		Use:   "curve [easing]",
		Short: "plot an easing curve",
		Args:  cobra.ExactArgs(1),
		RunE:  plotCurve,
	}
	curveCmd.Flags().IntVar(&curveSteps, "steps", 80, "samples along the curve")

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "print interpolated values along a transition",
		RunE:  sampleTransition,
	}
	sampleCmd.Flags().StringVar(&from, "from", "0", "start value (number, colour or template)")
	sampleCmd.Flags().StringVar(&to, "to", "1", "end value (number, colour or template)")
	sampleCmd.Flags().StringVar(&easingName, "easing", "linear", "easing name")
	sampleCmd.Flags().DurationVar(&duration, "duration", 300*time.Millisecond, "transition duration")
	sampleCmd.Flags().IntVar(&steps, "steps", 10, "number of samples")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "play a bound transition in the terminal",
		RunE:  runBinding,
	}
	runCmd.Flags().StringVar(&selectors, "selectors", "", "selector map file (yaml or json)")
	runCmd.Flags().StringVar(&specFile, "spec", "", "transition spec file (yaml or json)")
	runCmd.Flags().StringVar(&key, "key", "", "initial selector key (default: first key)")
	runCmd.Flags().StringVar(&watchFile, "watch", "", "file holding the selector key to follow")
	runCmd.Flags().StringVar(&easingName, "easing", "ease-in-out", "easing name when no spec is given")
	runCmd.Flags().DurationVar(&duration, "duration", 300*time.Millisecond, "duration when no spec is given")
	runCmd.Flags().DurationVar(&delay, "delay", 0, "delay when no spec is given")
	runCmd.Flags().BoolVar(&accelerated, "accelerated", false, "apply frames off the event loop")
	_ = runCmd.MarkFlagRequired("selectors")

	rootCmd.AddCommand(curveCmd, sampleCmd, runCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func plotCurve(cmd *cobra.Command, args []string) error {
	easing, err := transit.EasingByName(args[0])
	if err != nil {
		return err
	}
	if curveSteps < 2 {
		return fmt.Errorf("steps must be at least 2")
	}

	data := make([]float64, curveSteps+1)
	for i := range data {
		data[i] = easing(float64(i) / float64(curveSteps))
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(curveSteps),
		asciigraph.Caption(args[0]),
	)
	fmt.Fprintln(cmd.OutOrStdout(), graph)
	return nil
}

func sampleTransition(cmd *cobra.Command, _ []string) error {
	easing, err := transit.EasingByName(easingName)
	if err != nil {
		return err
	}
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1")
	}

	a, errA := strconv.ParseFloat(from, 64)
	b, errB := strconv.ParseFloat(to, 64)
	if errA == nil && errB == nil {
		return printSamples(cmd.OutOrStdout(), a, b, easing)
	}
	return printSamples(cmd.OutOrStdout(), from, to, easing)
}

func printSamples[T transit.Value](w io.Writer, a, b T, easing transit.Easing) error {
	interp, err := transit.NewInterpolation(a, b, transit.NewSource())
	if err != nil {
		return err
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME", "PROGRESS", "VALUE")
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p := easing(t)
		at := time.Duration(t * float64(duration)).Round(time.Millisecond)
		tbl.Row(at.String(), strconv.FormatFloat(p, 'f', 3, 64), fmt.Sprint(interp.At(p)))
	}
	_, err = fmt.Fprintln(w, tbl.Render())
	return err
}

func runBinding(_ *cobra.Command, _ []string) error {
	data, err := os.ReadFile(selectors)
	if err != nil {
		return err
	}
	table, err := transit.LoadSelectors[string, string](data, transit.CodecFor(selectors))
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if key == "" {
		key = keys[0]
	}
	initial, ok := table[key]
	if !ok {
		return fmt.Errorf("%w: %s", transit.ErrUnknownSelector, key)
	}

	spec := transit.Spec{
		Duration:    duration.String(),
		Delay:       delay.String(),
		Easing:      easingName,
		Accelerated: accelerated,
	}
	if specFile != "" {
		raw, err := os.ReadFile(specFile)
		if err != nil {
			return err
		}
		spec, err = transit.ParseSpec(raw, transit.CodecFor(specFile))
		if err != nil {
			return err
		}
		spec.Accelerated = spec.Accelerated || accelerated
	}

	cfg, err := transit.BuildConfig(spec, initial)
	if err != nil {
		return err
	}

	host := tui.NewHost()
	binding, err := transit.Bind(transit.BindConfig[string, string]{
		Config:    cfg,
		Key:       key,
		Selectors: table,
	}, transit.WithDispatcher(host.Dispatch))
	if err != nil {
		return err
	}
	defer binding.Dispose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if watchFile != "" {
		go func() {
			_ = binding.Watch(ctx, transit.NewFileWatcher(watchFile))
		}()
	}

	return tui.Run(host, binding, keys)
}
