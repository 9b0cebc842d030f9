package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/config"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/entropy"
	"github.com/cheongcode/seamless-encryptor-sub001/internal/metrics"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "seamless-encryptor",
		Short: "Self-describing authenticated-encryption container tool",
		Long:  `Encrypts and decrypts whole buffers into a self-describing envelope format supporting AES-256-GCM, AES-256-CBC, ChaCha20-Poly1305 and XChaCha20-Poly1305, with password-protected key backups.`,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		encryptCmd(),
		decryptCmd(),
		wrapKeyCmd(),
		unwrapKeyCmd(),
		generateKeyCmd(),
		algorithmsCmd(),
		inspectCmd(),
		entropyCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newManager(cmd *cobra.Command) (*encryption.Manager, error) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"version":             version,
		"commit":              commit,
		"date":                date,
		"preferred_algorithm": cfg.Encryption.PreferredAlgorithm,
		"strict":              cfg.Encryption.Strict,
	}).Debug("Configuration loaded")

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(cfg.Metrics.Namespace)
	}

	return encryption.NewManager(cfg.Encryption, m), nil
}

// readKey accepts either a path to a key file (raw 32 bytes or 64 hex
// characters) or a 64-character hex string.
func readKey(keyArg string) ([]byte, error) {
	if keyArg == "" {
		return nil, fmt.Errorf("key is required")
	}

	data := []byte(keyArg)
	if fileData, err := os.ReadFile(keyArg); err == nil {
		data = fileData
	}

	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 64 {
		if key, err := hex.DecodeString(trimmed); err == nil {
			return key, nil
		}
	}
	if len(data) == 32 {
		return data, nil
	}
	return nil, fmt.Errorf("key must be 32 raw bytes or 64 hex characters")
}

func encryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a file into an envelope",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			keyArg, _ := cmd.Flags().GetString("key")
			key, err := readKey(keyArg)
			if err != nil {
				return err
			}

			input, _ := cmd.Flags().GetString("in")
			output, _ := cmd.Flags().GetString("out")
			algorithm, _ := cmd.Flags().GetString("algorithm")

			plaintext, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			envelopeBytes, err := mgr.EncryptWith(plaintext, key, algorithm)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, envelopeBytes, 0o600); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			logrus.WithFields(logrus.Fields{
				"input_bytes":  len(plaintext),
				"output_bytes": len(envelopeBytes),
			}).Info("Encrypted")
			return nil
		},
	}
	cmd.Flags().StringP("key", "k", "", "encryption key (hex string or key file)")
	cmd.Flags().StringP("in", "i", "", "input file")
	cmd.Flags().StringP("out", "o", "", "output file")
	cmd.Flags().StringP("algorithm", "a", "", "algorithm name (default from config)")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func decryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt an envelope",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			keyArg, _ := cmd.Flags().GetString("key")
			key, err := readKey(keyArg)
			if err != nil {
				return err
			}

			input, _ := cmd.Flags().GetString("in")
			output, _ := cmd.Flags().GetString("out")

			envelopeBytes, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			plaintext, err := mgr.Decrypt(envelopeBytes, key)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, plaintext, 0o600); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}

			logrus.WithField("output_bytes", len(plaintext)).Info("Decrypted")
			return nil
		},
	}
	cmd.Flags().StringP("key", "k", "", "encryption key (hex string or key file)")
	cmd.Flags().StringP("in", "i", "", "input file")
	cmd.Flags().StringP("out", "o", "", "output file")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func wrapKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrap-key",
		Short: "Create a password-protected backup of a key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			keyArg, _ := cmd.Flags().GetString("key")
			dek, err := readKey(keyArg)
			if err != nil {
				return err
			}

			password, _ := cmd.Flags().GetString("password")
			output, _ := cmd.Flags().GetString("out")

			blob, err := mgr.WrapKey(password, dek)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, blob, 0o600); err != nil {
				return fmt.Errorf("failed to write backup: %w", err)
			}

			logrus.WithField("backup_bytes", len(blob)).Info("Key wrapped")
			return nil
		},
	}
	cmd.Flags().StringP("key", "k", "", "key to back up (hex string or key file)")
	cmd.Flags().StringP("password", "p", "", "backup password (min 8 characters)")
	cmd.Flags().StringP("out", "o", "", "output backup file")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func unwrapKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unwrap-key",
		Short: "Recover a key from a password-protected backup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			password, _ := cmd.Flags().GetString("password")
			input, _ := cmd.Flags().GetString("in")
			output, _ := cmd.Flags().GetString("out")

			blob, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read backup: %w", err)
			}

			dek, err := mgr.UnwrapKey(password, blob)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Println(hex.EncodeToString(dek))
				return nil
			}
			if err := os.WriteFile(output, dek, 0o600); err != nil {
				return fmt.Errorf("failed to write key: %w", err)
			}
			logrus.Info("Key recovered")
			return nil
		},
	}
	cmd.Flags().StringP("password", "p", "", "backup password")
	cmd.Flags().StringP("in", "i", "", "backup file")
	cmd.Flags().StringP("out", "o", "", "output key file (default: print hex to stdout)")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func generateKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-key",
		Short: "Generate a fresh random 256-bit key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			dek, err := mgr.GenerateDEK()
			if err != nil {
				return err
			}

			output, _ := cmd.Flags().GetString("out")
			if output == "" {
				fmt.Println(hex.EncodeToString(dek))
				return nil
			}
			if err := os.WriteFile(output, dek, 0o600); err != nil {
				return fmt.Errorf("failed to write key: %w", err)
			}
			logrus.WithField("path", output).Info("Key generated")
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "output key file (default: print hex to stdout)")
	return cmd
}

func algorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List available encryption algorithms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			for _, d := range mgr.Algorithms() {
				fmt.Printf("%-20s code=%d nonce=%d tag=%d  %s\n", d.Name, d.Code, d.NonceSize, d.TagSize, d.Description)
			}
			return nil
		},
	}
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe an envelope without decrypting it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := newManager(cmd)
			if err != nil {
				return err
			}

			input, _ := cmd.Flags().GetString("in")
			envelopeBytes, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			info, err := mgr.Inspect(envelopeBytes)
			if err != nil {
				return err
			}

			fmt.Printf("version:     %d\n", info.Version)
			fmt.Printf("algorithm:   %s (code %d)\n", info.AlgorithmName, info.Algorithm.Code())
			fmt.Printf("iv:          %d bytes\n", info.IVLength)
			fmt.Printf("auth_tag:    %d bytes\n", info.AuthTagLength)
			fmt.Printf("nonce:       %d bytes\n", info.NonceLength)
			fmt.Printf("salt:        %d bytes\n", info.SaltLength)
			fmt.Printf("ciphertext:  %d bytes\n", info.CiphertextSize)
			return nil
		},
	}
	cmd.Flags().StringP("in", "i", "", "envelope file")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func entropyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entropy",
		Short: "Report Shannon entropy of a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, _ := cmd.Flags().GetString("in")
			chunkSize, _ := cmd.Flags().GetInt("chunk-size")

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			report := entropy.AnalyzeChunks(data, chunkSize)
			fmt.Printf("overall: %.4f bits/byte (%s)\n", report.Overall, report.Rating)
			fmt.Printf("chunks:  %d\n", len(report.Chunks))
			fmt.Printf("is_good: %v\n", report.IsGood)
			return nil
		},
	}
	cmd.Flags().StringP("in", "i", "", "input file")
	cmd.Flags().Int("chunk-size", entropy.DefaultChunkSize, "chunk size in bytes")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
