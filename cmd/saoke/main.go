package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/minhlq/saoke/pkg/config"
	"github.com/minhlq/saoke/pkg/cutover"
	"github.com/minhlq/saoke/pkg/ledger"
	"github.com/minhlq/saoke/pkg/merge"
	"github.com/minhlq/saoke/pkg/models"
	"github.com/minhlq/saoke/pkg/profile"
	"github.com/minhlq/saoke/pkg/reader"
	"github.com/minhlq/saoke/pkg/service"
)

var (
	cliFilters filters
	cfgFile    string
)

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "saoke",
		Level:           log.DebugLevel,
	})
}

var rootCmd = &cobra.Command{
	Use:   "saoke",
	Short: "Merge and reconcile Vietnamese bank statement exports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge [flags] <glob>",
	Short: "Merge statement files into one workbook per bank account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		profiles, err := profile.Load(cfg.ProfilesPath)
		if err != nil {
			return err
		}

		matches, err := filepath.Glob(args[0])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no files found matching pattern %s", args[0])
		}

		processor := service.NewProcessor(profiles, logger)
		report, err := processor.ProcessPaths(matches, cfg.OutputDir)
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show how a statement file is classified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		profiles, err := profile.Load(cfg.ProfilesPath)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := reader.Read(data, filepath.Base(args[0]))
		if err != nil {
			return err
		}

		p := profiles.Detect(doc.Rows)
		if p == nil {
			fmt.Println("bank: not recognized")
			return nil
		}
		fmt.Printf("bank: %s\n", p.ID)
		fmt.Printf("account: %s\n", p.AccountNumber(doc.Rows))
		headerIdx := p.HeaderRow(doc.Rows)
		fmt.Printf("header row: %d\n", headerIdx)

		dump, _ := cmd.Flags().GetBool("dump")
		if dump {
			limit := len(doc.Rows)
			if headerIdx >= 0 && headerIdx+6 < limit {
				limit = headerIdx + 6
			}
			pp.Println(doc.Rows[:limit])
		}
		return nil
	},
}

var cutoverCmd = &cobra.Command{
	Use:   "cutover [flags] <glob>",
	Short: "Post transactions newer than the ledger's last recorded reference",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		profiles, err := profile.Load(cfg.ProfilesPath)
		if err != nil {
			return err
		}

		matches, err := filepath.Glob(args[0])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no files found matching pattern %s", args[0])
		}

		var docs []models.Document
		for _, match := range matches {
			data, err := os.ReadFile(match)
			if err != nil {
				return err
			}
			doc, err := reader.Read(data, filepath.Base(match))
			if err != nil {
				logger.Warn("unreadable file", "file", match, "err", err)
				continue
			}
			docs = append(docs, doc)
		}

		groups, classifyErrs := merge.GroupDocuments(profiles, docs, logger)
		for _, ce := range classifyErrs {
			fmt.Printf("? %s: %s\n", ce.Filename, ce.Reason)
		}
		results, failures := merge.New(profiles, logger).Run(groups)
		for _, f := range failures {
			fmt.Printf("! %s: %v\n", f.Group, f.Err)
		}

		book, err := ledger.Open(cfg.LedgerPath, logger)
		if err != nil {
			return err
		}
		defer book.Close()

		override, _ := cmd.Flags().GetBool("override")
		poster := cutover.NewPoster(book, logger)
		for _, res := range results {
			resolution, err := poster.Post(res, override)
			if err != nil {
				fmt.Printf("! %s: %v\n", res.Key(), err)
				continue
			}
			printResolution(res.Key(), resolution)
		}
		return book.Save()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().String("profiles", "", "Bank profile YAML file (default: builtin profiles)")
	rootCmd.PersistentFlags().String("output", ".", "Output directory for merged workbooks")

	rootCmd.PersistentFlags().StringVar(&cliFilters.startDate, "start", "", "Only display transactions on or after this date (dd/mm/yyyy); does not narrow what is merged or posted")
	rootCmd.PersistentFlags().StringVar(&cliFilters.endDate, "end", "", "Only display transactions on or before this date (dd/mm/yyyy); does not narrow what is merged or posted")

	inspectCmd.Flags().Bool("dump", false, "Dump the metadata block and header rows")

	cutoverCmd.Flags().String("ledger", "ledger.xlsx", "Accounting workbook path")
	cutoverCmd.Flags().Bool("override", false, "Proceed despite a balance mismatch")

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(cutoverCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
