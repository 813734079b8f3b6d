package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scopecraft/presales-cli/internal/export"
	"github.com/scopecraft/presales-cli/internal/model"
	"github.com/scopecraft/presales-cli/internal/timeline"
)

var (
	timelineAssessment string
	timelineTasksFile  string
	timelineDays       int
	timelineSave       bool
	timelineJSON       bool
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Lay planned tasks out on a per-role timeline",
	Long: "Splits each task's man-days across its actors, adds the supervision floor, and\n" +
		"reports per-role daily effort. Tasks come from a JSON file or a stored plan.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("timeline"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		pack, err := loadPack(ctx, st)
		if err != nil {
			return err
		}

		var plan *model.TimelinePlan
		switch {
		case timelineTasksFile != "":
			tasks, err := readTasksFile(timelineTasksFile)
			if err != nil {
				return err
			}
			plan = &model.TimelinePlan{
				AssessmentID: timelineAssessment,
				Tasks:        tasks,
				TotalDays:    timelineDays,
			}
		case timelineAssessment != "":
			plan, err = st.GetTimeline(ctx, timelineAssessment)
			if err != nil {
				return eris.Wrapf(err, "load timeline plan for %s", timelineAssessment)
			}
			if cmd.Flags().Changed("days") {
				plan.TotalDays = timelineDays
			}
		default:
			return eris.New("either --tasks or --assessment is required")
		}

		alloc := timeline.NewAllocator(pack.Cost.RoleOrder()).Allocate(plan.Tasks, plan.TotalDays)

		if timelineSave {
			if plan.AssessmentID == "" {
				return eris.New("--assessment is required to save a plan")
			}
			if err := st.SaveTimeline(ctx, plan); err != nil {
				return err
			}
			zap.L().Info("timeline plan saved",
				zap.String("assessment", plan.AssessmentID),
				zap.Int("tasks", len(plan.Tasks)),
				zap.Int("total_days", alloc.TotalDays))
		}

		if timelineJSON {
			return printJSON(struct {
				Plan       *model.TimelinePlan `json:"plan"`
				Allocation timeline.Allocation `json:"allocation"`
			}{plan, alloc})
		}

		export.WriteReport(os.Stdout, export.Summary{Timeline: &alloc})
		return nil
	},
}

func readTasksFile(path string) ([]model.TimelineTask, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read tasks file")
	}
	var tasks []model.TimelineTask
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, eris.Wrapf(err, "parse tasks file %s", path)
	}
	if len(tasks) == 0 {
		return nil, eris.Errorf("tasks file %s has no tasks", path)
	}
	return tasks, nil
}

func init() {
	timelineCmd.Flags().StringVar(&timelineAssessment, "assessment", "", "stored assessment ID")
	timelineCmd.Flags().StringVar(&timelineTasksFile, "tasks", "", "JSON file with the task list")
	timelineCmd.Flags().IntVar(&timelineDays, "days", 0, "configured project length in working days")
	timelineCmd.Flags().BoolVar(&timelineSave, "save", false, "persist the plan for the assessment")
	timelineCmd.Flags().BoolVar(&timelineJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(timelineCmd)
}
