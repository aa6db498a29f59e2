// 指示: miu200521358
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_glb"
	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_image"
	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_obj"
	"github.com/miu200521358/mu_glb2obj/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_glb2obj/pkg/infra/config"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/logging"
	"github.com/miu200521358/mu_glb2obj/pkg/shared/base/merr"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/minteractor"
	"github.com/spf13/cobra"
)

const (
	exitCodeOK     = 0
	exitCodeFailed = 1
)

// cli はコマンド間で共有する実行状態を保持する。
type cli struct {
	out    io.Writer
	errOut io.Writer
	cfg    config.Config
}

// main はGLBからOBJへの変換CLIを実行する。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runContext(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run はCLI処理全体を実行し、終了コードを返す。
func run(args []string, out io.Writer, errOut io.Writer) int {
	return runContext(context.Background(), args, out, errOut)
}

// runContext はctx付きでCLI処理全体を実行する。
func runContext(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	root := newRootCommand(&cli{out: out, errOut: errOut})
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, err)
		return exitCodeFailed
	}
	return exitCodeOK
}

// newRootCommand はルートコマンドを生成する。
func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "mu_glb2obj",
		Short:         messages.CommandRootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Resolve(cmd.Flags())
			if err != nil {
				return fmt.Errorf(messages.MessageConfigFailed, err)
			}
			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return fmt.Errorf(messages.MessageConfigFailed, err)
			}
			logging.SetDefaultLogger(logging.NewLogger(c.errOut, level))
			c.cfg = cfg
			return nil
		},
	}
	config.RegisterFlags(root.PersistentFlags())
	root.AddCommand(newConvertCommand(c), newBatchCommand(c), newWatchCommand(c))
	return root
}

// newUsecase は設定に従いユースケースを組み立てる。
func (c *cli) newUsecase() (*minteractor.Glb2ObjUsecase, error) {
	format, err := io_image.ParseFormat(c.cfg.Output.ImageFormat)
	if err != nil {
		return nil, err
	}
	return minteractor.NewGlb2ObjUsecase(minteractor.Glb2ObjUsecaseDeps{
		SceneReader:  io_glb.NewGlbRepository(),
		ObjectWriter: io_obj.NewObjRepository(c.cfg.Output.VertexColors),
		ImageWriter:  io_image.NewImageRepository(format, c.cfg.Output.MaxTextureSize),
	}), nil
}

// newConvertCommand は1ファイル変換コマンドを生成する。
func newConvertCommand(c *cli) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "convert <input>",
		Short: messages.CommandConvertShort,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New(messages.MessageInputRequired)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := c.newUsecase()
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, messages.LogConvertStart+"\n", args[0])
			result, err := uc.Convert(cmd.Context(), minteractor.ConvertRequest{
				InputPath:     args[0],
				OutputDir:     outputDir,
				DecodeOptions: c.cfg.DecodeOptions(),
			})
			if err != nil {
				return fmt.Errorf(messages.MessageConvertFailed, err)
			}
			c.printConvertResult(result)
			if c.cfg.Output.Strict && result.Report.HasFailures() {
				return fmt.Errorf(messages.MessageStrictFailures, len(result.Report.Failures))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", messages.FlagOut)
	return cmd
}

// printConvertResult は変換結果と単位ごとの失敗・警告を表示する。
func (c *cli) printConvertResult(result *minteractor.ConvertResult) {
	for _, failure := range result.Report.Failures {
		fmt.Fprintf(c.errOut, messages.LogUnitFailure+"\n",
			failure.Unit, failure.Index, merr.ExtractErrorID(failure.Err), failure.Err)
	}
	for _, warning := range result.Export.Manifest.Warnings {
		fmt.Fprintf(c.errOut, messages.LogUnitWarning+"\n", warning.ID, warning.Unit, warning.Index)
	}
	fmt.Fprintf(c.out, messages.LogConvertComplete+"\n",
		result.OutputDir,
		len(result.Report.Objects),
		len(result.Export.Manifest.Materials),
		result.Export.FileCount,
	)
}

// newBatchCommand は一括変換コマンドを生成する。
func newBatchCommand(c *cli) *cobra.Command {
	var (
		srcDir      string
		dstDir      string
		concurrency int
		dryRun      bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: messages.CommandBatchShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, err := c.newUsecase()
			if err != nil {
				return err
			}
			var (
				mu   sync.Mutex
				done atomic.Int32
			)
			total := 0
			if files, err := minteractor.FindSourceFiles(srcDir); err == nil {
				total = len(files)
			}
			result, err := uc.Batch(cmd.Context(), minteractor.BatchRequest{
				SrcDir:        srcDir,
				DstDir:        dstDir,
				Concurrency:   concurrency,
				DryRun:        dryRun,
				DecodeOptions: c.cfg.DecodeOptions(),
				OnItem: func(item minteractor.BatchItem) {
					n := done.Add(1)
					mu.Lock()
					defer mu.Unlock()
					if item.Err != nil {
						fmt.Fprintf(c.errOut, messages.LogBatchItemError+"\n", n, total, item.Status, item.SourcePath, item.Err)
						return
					}
					fmt.Fprintf(c.out, messages.LogBatchItem+"\n", n, total, item.Status, item.SourcePath, item.OutputDir)
				},
			})
			if err != nil {
				return fmt.Errorf(messages.MessageBatchFailed, err)
			}
			fmt.Fprintf(c.out, messages.LogBatchSummary+"\n",
				len(result.Items), result.Succeeded, result.Partial, result.Failed, result.DryRun)
			if result.Failed > 0 {
				return fmt.Errorf(messages.MessageBatchFailed, fmt.Sprintf("failed=%d", result.Failed))
			}
			if c.cfg.Output.Strict && result.Partial > 0 {
				return fmt.Errorf(messages.MessageStrictFailures, result.Partial)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&srcDir, "src", "", messages.FlagSrc)
	cmd.Flags().StringVar(&dstDir, "dst", "", messages.FlagDst)
	cmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), messages.FlagConcurrency)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, messages.FlagDryRun)
	_ = cmd.MarkFlagRequired("src")
	_ = cmd.MarkFlagRequired("dst")
	return cmd
}

// newWatchCommand は監視変換コマンドを生成する。
func newWatchCommand(c *cli) *cobra.Command {
	var (
		dstDir   string
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: messages.CommandWatchShort,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New(messages.MessageWatchDirMissing)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := c.newUsecase()
			if err != nil {
				return err
			}
			err = uc.Watch(cmd.Context(), minteractor.WatchRequest{
				Dir:           args[0],
				DstDir:        dstDir,
				Debounce:      debounce,
				DecodeOptions: c.cfg.DecodeOptions(),
				OnStarted: func() {
					fmt.Fprintf(c.out, messages.LogWatchStart+"\n", args[0])
				},
				OnResult: func(result minteractor.WatchResult) {
					if result.Err != nil {
						fmt.Fprintf(c.errOut, messages.LogWatchError+"\n", result.SourcePath, result.Err)
						return
					}
					fmt.Fprintf(c.out, messages.LogWatchResult+"\n", result.SourcePath, result.OutputDir)
				},
			})
			if err != nil {
				return fmt.Errorf(messages.MessageWatchFailed, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dstDir, "dst", "", messages.FlagWatchDst)
	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, messages.FlagDebounce)
	return cmd
}
