package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tablegen/internal/service"
	"tablegen/internal/table"
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt...]",
	Short: "Generate a spreadsheet from a requirement description",
	Long: `Send the requirement description to the chat completion endpoint and save
the returned table as an .xlsx file. The prompt is read from the arguments,
from --file, or from stdin when neither is given.`,
	Example: `  tablegen generate "List the 5 largest EU countries with capital and population"
  tablegen generate -f requirement.txt -o out/countries.xlsx --strict
  echo "Weekly meal plan" | tablegen generate --print`,
	RunE: runGenerateCmd,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.StringP("file", "f", "", "read the prompt from a file (- for stdin)")
	flags.StringP("output", "o", "", "output .xlsx path (default: <export.dir>/table-<timestamp>.xlsx)")
	flags.Bool("strict", false, "drop markdown separator rows and require every row to match the header width")
	flags.Bool("print", false, "also print the parsed table to stdout")

	_ = viper.BindPFlag("parser.strict", flags.Lookup("strict"))
}

func runGenerateCmd(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	file, _ := cmd.Flags().GetString("file")
	output, _ := cmd.Flags().GetString("output")
	printTable, _ := cmd.Flags().GetBool("print")

	prompt, err := readPrompt(args, file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if output == "" {
		output = defaultOutputPath(cfg.Export.Dir, time.Now())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc := service.NewTableService(cfg.API, cfg.Parser)
	return generate(ctx, svc, prompt, output, printTable, cmd.OutOrStdout())
}

// generate 后台生成表格，等待期间输出状态，完成后导出
func generate(ctx context.Context, svc *service.TableService, prompt, output string, printTable bool, out io.Writer) error {
	log.Info().Msg("communicating with API...")

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	results := svc.Generate(ctx, prompt)
	start := time.Now()

	var res service.GenerateResult
wait:
	for {
		select {
		case res = <-results:
			break wait
		case <-ticker.C:
			log.Info().Dur("elapsed", time.Since(start).Round(time.Second)).Msg("still waiting for API response...")
		}
	}

	if res.Err != nil {
		log.Info().Msg("ready")
		return res.Err
	}

	if printTable {
		fmt.Fprint(out, table.Markdown(res.Table))
	}

	path, err := svc.ExportTable(ctx, res.Table, output)
	if err != nil {
		log.Info().Msg("ready")
		return err
	}

	fmt.Fprintf(out, "saved to: %s\n", path)
	return nil
}

// readPrompt 依次从参数、文件、标准输入读取需求描述
func readPrompt(args []string, file string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if file != "" && file != "-" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	return string(data), nil
}

func defaultOutputPath(dir string, now time.Time) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "table-"+now.Format("20060102-150405")+".xlsx")
}
