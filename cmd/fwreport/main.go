package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"

	"example.com/fwsplit/internal/layout"
	"example.com/fwsplit/internal/manifest"
	"example.com/fwsplit/internal/report"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

type logConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

type config struct {
	Title  string    `yaml:"title"`
	Author string    `yaml:"author"`
	Logs   logConfig `yaml:"logs"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "manifest":
		manifestCmd(os.Args[2:])
	case "pdf":
		pdfCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`fwreport %s (built %s) <command> [options]

Commands:
  manifest  --layout <config_file> [--image <firmware_file>] [--config <config.yaml>] --out <manifest.json>
  pdf       --manifest <manifest.json> [--config <config.yaml>] --out <report.pdf>
`, version, buildDate)
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Logs.MaxSizeMB <= 0 {
		cfg.Logs.MaxSizeMB = 25
	}
	if cfg.Logs.MaxAgeDays <= 0 {
		cfg.Logs.MaxAgeDays = 7
	}
	if cfg.Logs.MaxBackups <= 0 {
		cfg.Logs.MaxBackups = 5
	}
	return cfg, nil
}

func setupLogging(cfg config) error {
	if cfg.Logs.Directory == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Logs.Directory, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Logs.Directory, "fwreport.log"),
		MaxSize:    cfg.Logs.MaxSizeMB,
		MaxAge:     cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return nil
}

func manifestCmd(args []string) {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	layoutPath := fs.String("layout", "", "firmware layout config file")
	imagePath := fs.String("image", "", "firmware image to include in the manifest")
	configPath := fs.String("config", "", "fwreport config (yaml)")
	out := fs.String("out", "manifest.json", "output json")
	fs.Parse(args)

	if *layoutPath == "" {
		fmt.Println("required: --layout")
		os.Exit(1)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Println("load config:", err)
		os.Exit(1)
	}
	if err := setupLogging(cfg); err != nil {
		fmt.Println("setup logging:", err)
		os.Exit(1)
	}

	parts, err := layout.ParseFile(*layoutPath)
	if err != nil {
		fmt.Println("parse layout:", err)
		os.Exit(1)
	}
	m, err := manifest.Build(*imagePath, parts)
	if err != nil {
		fmt.Println("manifest build:", err)
		os.Exit(1)
	}
	if err := manifest.Save(m, *out); err != nil {
		fmt.Println("manifest save:", err)
		os.Exit(1)
	}
	sum, err := m.Sum()
	if err != nil {
		fmt.Println("manifest digest:", err)
		os.Exit(1)
	}
	log.Printf("wrote %s (%d part(s), digest %s)", *out, len(m.Items), sum)
}

func pdfCmd(args []string) {
	fs := flag.NewFlagSet("pdf", flag.ExitOnError)
	manifestPath := fs.String("manifest", "", "manifest JSON file")
	configPath := fs.String("config", "", "fwreport config (yaml)")
	out := fs.String("out", "report.pdf", "output PDF")
	fs.Parse(args)

	if *manifestPath == "" {
		fmt.Println("required: --manifest")
		os.Exit(1)
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Println("load config:", err)
		os.Exit(1)
	}
	if err := setupLogging(cfg); err != nil {
		fmt.Println("setup logging:", err)
		os.Exit(1)
	}

	m, err := manifest.Load(*manifestPath)
	if err != nil {
		fmt.Println("load manifest:", err)
		os.Exit(1)
	}
	opts := report.Options{Title: cfg.Title, Author: cfg.Author}
	if err := report.SaveManifestPDF(m, opts, *out); err != nil {
		fmt.Println("write pdf:", err)
		os.Exit(1)
	}
	log.Printf("wrote %s", *out)
}
