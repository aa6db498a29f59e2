// 指示: miu200521358
package minteractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/miu200521358/mu_glb2obj/pkg/adapter/io_glb"
	"github.com/miu200521358/mu_glb2obj/pkg/usecase/decoder"
)

const defaultWatchDebounce = 300 * time.Millisecond

// WatchRequest はディレクトリ監視変換の要求を表す。
type WatchRequest struct {
	Dir           string
	DstDir        string
	Debounce      time.Duration
	DecodeOptions decoder.Options
	// OnStarted は監視登録の完了後に1回呼ばれる。
	OnStarted func()
	// OnResult は変換1件ごとに監視goroutineから呼ばれる。
	OnResult func(WatchResult)
}

// WatchResult は監視中の変換1件の結果を表す。
type WatchResult struct {
	SourcePath string
	OutputDir  string
	Result     *ConvertResult
	Err        error
}

// watchOutputDir は監視対象ファイルの出力先を返す。
func (r WatchRequest) watchOutputDir(sourcePath string) string {
	if strings.TrimSpace(r.DstDir) == "" {
		return BuildDefaultOutputDir(sourcePath)
	}
	return batchOutputDir(r.Dir, r.DstDir, sourcePath, hasStemSibling(sourcePath))
}

// isWatchTrigger は変換を起こすイベントか判定する。
func isWatchTrigger(event fsnotify.Event) bool {
	if !io_glb.IsSupportedPath(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write)
}

// Watch はディレクトリを監視し、GLBの作成・更新ごとに変換する。
// 同じファイルへの連続イベントはDebounce期間でまとめる。ctx終了まで戻らない。
func (uc *Glb2ObjUsecase) Watch(ctx context.Context, request WatchRequest) error {
	dir := strings.TrimSpace(request.Dir)
	if dir == "" {
		return fmt.Errorf("監視ディレクトリが未指定です")
	}
	request.Dir = dir
	debounce := request.Debounce
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("監視の開始に失敗しました: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("監視ディレクトリの登録に失敗しました: %w", err)
	}
	logExportInfo("監視開始: dir=%s debounce=%s", dir, debounce)
	if request.OnStarted != nil {
		request.OnStarted()
	}

	ready := make(chan string, 16)
	var mu sync.Mutex
	pending := map[string]*time.Timer{}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, timer := range pending {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logExportInfo("監視終了: dir=%s", dir)
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isWatchTrigger(event) {
				continue
			}
			path := filepath.Clean(event.Name)
			mu.Lock()
			if timer, exists := pending[path]; exists {
				timer.Reset(debounce)
			} else {
				pending[path] = time.AfterFunc(debounce, func() {
					mu.Lock()
					delete(pending, path)
					mu.Unlock()
					select {
					case ready <- path:
					case <-ctx.Done():
					}
				})
			}
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logExportWarn("監視エラー: %v", err)
		case path := <-ready:
			outputDir := request.watchOutputDir(path)
			converted, err := uc.Convert(ctx, ConvertRequest{
				InputPath:     path,
				OutputDir:     outputDir,
				DecodeOptions: request.DecodeOptions,
			})
			if err != nil {
				logExportWarn("監視変換失敗: file=%s err=%v", filepath.Base(path), err)
			}
			if request.OnResult != nil {
				request.OnResult(WatchResult{
					SourcePath: path,
					OutputDir:  outputDir,
					Result:     converted,
					Err:        err,
				})
			}
		}
	}
}
