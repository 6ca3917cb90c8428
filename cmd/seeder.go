package cmd

import (
	"fmt"

	"github.com/frahmantamala/leave-management/internal/leave"
	leaveMemory "github.com/frahmantamala/leave-management/internal/leave/memory"
	"github.com/frahmantamala/leave-management/internal/notification"
	notificationMemory "github.com/frahmantamala/leave-management/internal/notification/memory"
	"github.com/frahmantamala/leave-management/internal/user"
	userMemory "github.com/frahmantamala/leave-management/internal/user/memory"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the demo accounts and data",
	Long:  `Seed the database with the demo users, leave requests and notifications. Existing rows are kept unless --clear is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		gormDB, _, err := openDatabase(cfg.Database)
		if err != nil {
			return err
		}
		if sqlDB, err := gormDB.DB(); err == nil {
			defer sqlDB.Close()
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(userMemory.DemoPassword), cfg.Security.BCryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}

		err = gormDB.WithContext(cmd.Context()).Transaction(func(tx *gorm.DB) error {
			if clearData {
				for _, table := range []string{"notifications", "leave_requests", "users"} {
					if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
						return fmt.Errorf("clear %s: %w", table, err)
					}
				}
			}

			for _, u := range userMemory.SeedUsers() {
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(user.ToDataModel(u, string(hash))).Error; err != nil {
					return fmt.Errorf("seed user %s: %w", u.Email, err)
				}
			}
			for _, l := range leaveMemory.SeedLeaveRequests() {
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(leave.ToDataModel(l)).Error; err != nil {
					return fmt.Errorf("seed leave request %s: %w", l.ID, err)
				}
			}
			for _, n := range notificationMemory.SeedNotifications() {
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(notification.ToDataModel(n)).Error; err != nil {
					return fmt.Errorf("seed notification %s: %w", n.ID, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Info("database seeded", "clear", clearData)
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded demo accounts (password %q): john@example.com, sarah@example.com\n", userMemory.DemoPassword)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}
