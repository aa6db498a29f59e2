// 指示: miu200521358
// Package messages はCLI表示に使うメッセージを提供する。
package messages

// コマンド説明。
const (
	CommandRootShort    = "GLBシーンをOBJとPBRチャンネル画像へ変換する"
	CommandConvertShort = "GLBファイル1件を変換する"
	CommandBatchShort   = "ディレクトリ配下のGLBを一括変換する"
	CommandWatchShort   = "ディレクトリを監視し、GLBの作成・更新ごとに変換する"

	FlagOut         = "出力ディレクトリ (既定: 入力と同じ場所の拡張子なし名)"
	FlagSrc         = "入力ディレクトリ"
	FlagDst         = "出力ディレクトリ"
	FlagConcurrency = "同時変換ファイル数"
	FlagDryRun      = "変換せず出力先の計画のみ表示する"
	FlagWatchDst    = "出力ディレクトリ (既定: 入力ファイルの隣)"
	FlagDebounce    = "同一ファイルの連続イベントをまとめる待ち時間"
)

// 進捗・結果表示。
const (
	LogConvertStart    = "[mu_glb2obj] 変換開始: %s"
	LogConvertComplete = "[mu_glb2obj] 変換完了: %s objects=%d materials=%d files=%d"
	LogUnitFailure     = "[mu_glb2obj] 失敗: unit=%s index=%d id=%s %v"
	LogUnitWarning     = "[mu_glb2obj] 警告: %s unit=%s index=%d"
	LogBatchItem       = "[%d/%d] %s: %s -> %s"
	LogBatchItemError  = "[%d/%d] %s: %s reason=%v"
	LogBatchSummary    = "バッチ変換サマリ: total=%d succeeded=%d partial=%d failed=%d dry_run=%d"
	LogWatchStart      = "[mu_glb2obj] 監視開始: %s"
	LogWatchResult     = "[mu_glb2obj] 再変換: %s -> %s"
	LogWatchError      = "[mu_glb2obj] 再変換失敗: %s reason=%v"
)

// エラー表示。
const (
	MessageConfigFailed    = "設定の解決に失敗しました: %v"
	MessageConvertFailed   = "変換に失敗しました: %v"
	MessageBatchFailed     = "一括変換に失敗しました: %v"
	MessageWatchFailed     = "監視に失敗しました: %v"
	MessageStrictFailures  = "単位ごとの失敗があります (--strict): %d件"
	MessageInputRequired   = "GLBファイルを指定してください"
	MessageWatchDirMissing = "監視ディレクトリを指定してください"
)
