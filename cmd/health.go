package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/relgraph/database"
	"github.com/ridoystarlord/relgraph/introspect"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the configured source is reachable",
	Long: `Check that the configured object source is accessible and responsive.

Examples:
  relgraph health                          # Check the default source
  relgraph health --source postgres        # Check database connectivity
  relgraph health --timeout 10s            # Set custom timeout
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkSourceHealth(); err != nil {
			fmt.Printf("❌ Health check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Source is healthy and accessible")
	},
}

var healthTimeout time.Duration

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

func checkSourceHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	if viper.GetString("source") == sourcePostgres {
		version, err := database.Ping(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("🐘 PostgreSQL %s\n", version)
	}

	source, err := describerFromConfig()
	if err != nil {
		return err
	}

	lister, ok := source.(introspect.ObjectLister)
	if !ok {
		return nil
	}
	objects, err := lister.ListObjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list objects: %v", err)
	}

	if len(objects) == 0 {
		fmt.Println("⚠️  Source is accessible but has no objects")
		fmt.Println("   Run 'relgraph init' to create an example schema")
		return nil
	}

	fmt.Printf("📊 Found %d describable objects\n", len(objects))
	return nil
}
