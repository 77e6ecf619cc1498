package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"yatube/app/config"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loadConfig is a variable so tests can point the commands at
// temporary directories.
var loadConfig = config.Load

// confirm asks a yes/no question on the command's streams. Anything
// but y or Y is a no.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// withServices opens the database and runs fn against the services.
func withServices(cmd *cobra.Command, fn func(svc *services.Services, out io.Writer) error) error {
	cfg := loadConfig()
	if !exists(cfg.DataDir) {
		return fmt.Errorf("no database at %s, run init first", cfg.DataDir)
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := repositories.Open(cfg.DataDir, log)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := services.New(repositories.NewStore(db), storage.NewImageStore(cfg.MediaDir, cfg.MaxUploadBytes))
	if err := fn(svc, cmd.OutOrStdout()); err != nil {
		log.Debug("command failed", zap.String("command", cmd.CommandPath()), zap.Error(err))
		return err
	}
	return nil
}
