package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nodewee/file-to-text/pkg/config"
	"github.com/nodewee/file-to-text/pkg/constants"
	"github.com/nodewee/file-to-text/pkg/core"
	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/types"
	"github.com/nodewee/file-to-text/pkg/utils"
)

var (
	cfgFile     string
	envFile     string
	outputPath  string
	showVersion bool
)

// AppHandler wires configuration, logging and the conversion pipeline
type AppHandler struct {
	config       *config.Config
	logger       *logger.Logger
	tempManager  *utils.SimpleTempManager
	processor    *core.DefaultFileProcessor
	orchestrator *core.ConversionOrchestrator
}

// NewAppHandler creates an application handler
func NewAppHandler() *AppHandler {
	return &AppHandler{}
}

// initialize loads the configuration and builds the pipeline
func (h *AppHandler) initialize() error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Conversion.TempDir != "" {
		if cfg.Conversion.TempDir, err = utils.ExpandPath(cfg.Conversion.TempDir); err != nil {
			return err
		}
	}
	h.config = cfg

	h.logger = logger.NewLoggerWithOutput(cfg.Log.Level, cfg.Log.Format, cfg.Log.Verbose, os.Stderr)
	h.tempManager = utils.NewSimpleTempManager(cfg.Conversion.TempDir, h.logger)
	h.processor = core.NewFileProcessor(core.OptionsFromConfig(cfg.Conversion), h.tempManager, h.logger)
	h.orchestrator = core.NewConversionOrchestrator(h.processor, h.tempManager, h.logger)

	h.logger.Debug("Loaded configuration: %s", cfg)
	return nil
}

// close removes any transient file still tracked
func (h *AppHandler) close() {
	if h.tempManager == nil {
		return
	}
	if err := h.tempManager.Cleanup(); err != nil {
		h.logger.Warn("Cleanup failed: %v", err)
	}
}

// ProcessFile converts one local file the same way an upload is converted
func (h *AppHandler) ProcessFile(inputFile string) error {
	if err := h.initialize(); err != nil {
		return err
	}
	defer h.close()

	absPath, err := utils.GetAbsolutePath(inputFile)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeValidation, "error resolving file path")
	}

	outputFilePath, err := h.determineOutputPath(absPath)
	if err != nil {
		return err
	}

	file, err := os.Open(absPath)
	if err != nil {
		return utils.WrapError(err, "", "cannot open input file")
	}
	defer file.Close()

	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	effect := h.orchestrator.HandleUpload(context.Background(), core.NewRequestContext(), types.UploadedBlob{
		Filename: filepath.Base(absPath),
		Data:     file,
		Size:     size,
	})
	if effect.Failed() {
		return utils.NewConversionError(effect.Error, nil)
	}

	if err := os.WriteFile(outputFilePath, effect.Download.Data, constants.DefaultFilePermission); err != nil {
		return utils.NewIOError("failed to write output file", err)
	}

	h.displayResults(effect, outputFilePath)
	return nil
}

// determineOutputPath returns -o when given, otherwise <input dir>/<base>.txt.
// The input itself is never overwritten.
func (h *AppHandler) determineOutputPath(inputPath string) (string, error) {
	target := outputPath
	if target == "" {
		target = filepath.Join(filepath.Dir(inputPath), utils.TextFileName(inputPath))
	}
	target, err := utils.GetAbsolutePath(target)
	if err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeIO, "error determining output path")
	}
	if target == inputPath {
		return "", utils.NewValidationError(
			fmt.Sprintf("output would overwrite the input file %s; choose another path with -o", inputPath), nil)
	}
	if err := utils.EnsureDir(filepath.Dir(target)); err != nil {
		return "", utils.NewIOError("failed to create output directory", err)
	}
	return target, nil
}

// displayResults prints the preview the web page would show
func (h *AppHandler) displayResults(effect *types.UIEffect, outputFilePath string) {
	fmt.Printf("✅ Text extracted successfully\n")
	if effect.NoText {
		fmt.Printf("ℹ️  %s\n", constants.NoTextNotice)
	}
	fmt.Printf("📝 Extracted text length: %d characters\n", effect.Preview.TotalChars)
	fmt.Printf("💾 Saved to: %s\n", outputFilePath)

	if effect.Preview.Text != "" {
		fmt.Printf("📄 %s:---\n%s\n---\n", constants.PreviewHeading, effect.Preview.Text)
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   constants.AppName + " [input_file]",
	Short: "Convert documents to plain text",
	Long: `Convert documents to plain text, from the command line or through a single-page web UI.

Supported formats: DOCX, XLSX, PPTX, PDF, RTF, HTML, TXT, Markdown and ZIP
archives of those. Plugin converters (Calibre, a markitdown container) can be
enabled with --plugins for formats the built-in converters cannot read.

Configuration is read from --config, ./file-to-text.yaml or
~/.file-to-text/config.yaml, then .env, then FILE_TO_TEXT_* environment variables.

Examples:
  file-to-text report.docx                  # Writes report.txt next to the input
  file-to-text slides.pptx -o ./out.txt     # Writes to a specific path
  file-to-text scan.epub --plugins          # Uses Calibre when built-ins cannot convert
  file-to-text serve                        # Starts the web UI on :8501
  file-to-text config list                  # Shows the effective configuration`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Printf("%s %s\n", constants.AppName, version)
			return
		}

		if len(args) == 0 {
			_ = cmd.Help()
			return
		}

		handler := NewAppHandler()
		if err := handler.ProcessFile(args[0]); err != nil {
			log.Fatalf("Error: %s", utils.UserMessage(err))
		}
	},
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// initConfig loads .env and the config file before any command runs
func initConfig() {
	if err := config.LoadDotEnv(envFile); err != nil {
		log.Fatalf("Error: %s", utils.UserMessage(err))
	}
	if err := config.Init(viper.GetViper(), cfgFile); err != nil {
		log.Fatalf("Error: %s", utils.UserMessage(err))
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./file-to-text.yaml or ~/.file-to-text/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"dotenv file loaded into the environment before configuration")
	rootCmd.PersistentFlags().Bool("plugins", false,
		"Enable plugin converters that run external tools (Calibre, markitdown container)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output to show progress information")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"Output file path (default: {input_file_directory}/{input_name}.txt)")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false,
		"Show version information")

	_ = viper.BindPFlag("conversion.enable_plugins", rootCmd.PersistentFlags().Lookup("plugins"))
	_ = viper.BindPFlag("log.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
