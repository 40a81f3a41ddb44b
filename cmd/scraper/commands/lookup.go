package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"facebook-extractor/internal/config"
	"facebook-extractor/internal/monitoring"
	"facebook-extractor/internal/scraper"
	"facebook-extractor/pkg/types"
)

func init() {
	rootCmd.AddCommand(postCmd, userCmd, targetsCmd)
}

var postCmd = &cobra.Command{
	Use:   "post URL...",
	Short: "Extracts one record per post, reel or video URL.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLookups(cmd, args, nil)
	},
}

var userCmd = &cobra.Command{
	Use:   "user URL...",
	Short: "Extracts one record per profile or page URL.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLookups(cmd, nil, args)
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets FILE",
	Short: "Extracts every post and user URL listed in a targets file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := config.LoadTargets(args[0])
		if err != nil {
			return err
		}
		return runLookups(cmd, targets.Posts, targets.Users)
	},
}

type output struct {
	Posts []*types.PostRecord `json:"posts,omitempty"`
	Users []*types.UserRecord `json:"users,omitempty"`
}

func runLookups(cmd *cobra.Command, postURLs, userURLs []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	var out output
	var lookupErr error
	if len(postURLs) > 0 {
		out.Posts, lookupErr = s.client.LookupPosts(ctx, postURLs...)
	}
	if lookupErr == nil && len(userURLs) > 0 {
		out.Users, lookupErr = s.client.LookupUsers(ctx, userURLs...)
	}
	if lookupErr != nil {
		s.logger.WithError(lookupErr).WithField("kind", types.ErrorKind(lookupErr)).Error("Lookup batch stopped")
	}

	if minReactions > 0 {
		var stats types.FilterStats
		out.Posts, stats = scraper.BatchFilter(out.Posts, &types.PostFilter{MinReactions: minReactions})
		s.logger.Infof("Filter results: %s", stats)
	}

	if s.db != nil {
		for _, post := range out.Posts {
			if err := s.db.SavePost(ctx, post); err != nil {
				s.logger.WithError(err).WithField("url", post.URL).Error("Failed to save post")
			}
		}
		for _, user := range out.Users {
			if err := s.db.SaveUser(ctx, user); err != nil {
				s.logger.WithError(err).WithField("profile", user.ProfileLink).Error("Failed to save user")
			}
		}
		s.logger.Infof("Saved %d posts and %d users", len(out.Posts), len(out.Users))
	}

	if err := writeOutput(out, s.cfg.Scraper.OutputFormat); err != nil {
		return err
	}

	sendAlerts(s)
	return lookupErr
}

func writeOutput(out output, format string) error {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "jsonl" {
		enc := json.NewEncoder(w)
		for _, post := range out.Posts {
			if err := enc.Encode(post); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
		for _, user := range out.Users {
			if err := enc.Encode(user); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

func sendAlerts(s *session) {
	thresholds := monitoring.AlertThresholds{
		StaleAfter:       time.Duration(s.cfg.Monitoring.StaleAfterMinutes) * time.Minute,
		MaxErrorRate:     s.cfg.Monitoring.MaxErrorRate,
		MaxUnhandledRate: s.cfg.Monitoring.MaxUnhandledRate,
	}
	manager := monitoring.NewAlertManager(s.monitor, thresholds, s.logger)
	manager.SendAlerts(manager.CheckAlerts())
}
