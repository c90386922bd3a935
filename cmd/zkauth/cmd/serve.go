package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/taurusgroup/zkauth/internal/server"
	"github.com/taurusgroup/zkauth/internal/storage"
	"github.com/taurusgroup/zkauth/internal/token"
	"github.com/taurusgroup/zkauth/pkg/auth"
	"github.com/taurusgroup/zkauth/pkg/session"
)

func init() {
	serveCmd.Flags().String("listen", ":8080", "address to listen on")
	serveCmd.Flags().Duration("ttl", session.DefaultAttemptTTL, "lifetime of a challenge (0 never expires)")
	serveCmd.Flags().String("db", "", "sqlite path or postgres DSN to persist registrations")
	serveCmd.Flags().String("db-driver", storage.DriverSqlite, "database driver (sqlite|postgres)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("attempt.ttl", serveCmd.Flags().Lookup("ttl"))
	viper.BindPFlag("database.dsn", serveCmd.Flags().Lookup("db"))
	viper.BindPFlag("database.driver", serveCmd.Flags().Lookup("db-driver"))
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verifier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		g, err := conf.Parameters()
		if err != nil {
			return err
		}

		storeOpts := []session.Option{session.WithAttemptTTL(conf.Attempt.TTL)}
		if conf.Token.Secret != "" {
			issuer, err := token.NewIssuer([]byte(conf.Token.Secret),
				token.WithLifetime(conf.Token.Lifetime),
				token.WithName(conf.Token.Issuer),
			)
			if err != nil {
				return err
			}
			storeOpts = append(storeOpts, session.WithIssuer(issuer))
		} else {
			log.Warn("token.secret is not set, issuing opaque session tokens")
		}

		var verifierOpts []auth.VerifierOption
		if conf.Database.DSN != "" {
			repo, err := storage.Open(conf.Database.Driver, conf.Database.DSN)
			if err != nil {
				return err
			}
			defer repo.Close()
			verifierOpts = append(verifierOpts, auth.WithRepository(repo))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		v := auth.NewVerifier(session.NewStore(g, storeOpts...), verifierOpts...)
		if _, err := v.Restore(ctx); err != nil {
			return fmt.Errorf("failed to restore registrations: %w", err)
		}

		return server.NewServer(v, &server.Config{
			Addr:          conf.Server.Listen,
			SweepInterval: conf.Attempt.SweepInterval,
			Debug:         conf.Debug,
		}).Start(ctx)
	},
}
