// Package main provides localization for the vidgen CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Render declarative markdown scenes into narrated videos.": "宣言的なマークダウンシーンからナレーション付き動画を生成します。",

		// Render command
		"Render a project to video.":                        "プロジェクトを動画にレンダリング",
		"Project directory (contains vidgen.yaml and scenes/).": "プロジェクトディレクトリ（vidgen.yaml と scenes/ を含む）",
		"Output directory (default: the project's output.directory).": "出力ディレクトリ（デフォルト: プロジェクトの output.directory）",
		"Quality preset (draft, standard, high).":           "品質プリセット（draft, standard, high）",
		"Override the project frame rate.":                  "プロジェクトのフレームレートを上書き",
		"Only render these formats (default: all declared).": "指定したフォーマットのみレンダリング（デフォルト: すべて）",
		"Output saved to %s":                                "出力を %s に保存しました",
		"Narration engine %q unavailable: %s":               "ナレーションエンジン %q が利用できません: %s",

		// Preview command
		"Render a single frame of one scene to PNG.": "シーンの1フレームをPNGとしてレンダリング",
		"Preview saved to %s":                        "プレビューを %s に保存しました",

		// Voices command
		"List available narration voices.": "利用可能なナレーション音声を一覧表示",
		"Voices for engine %q:":            "エンジン %q の音声:",

		// Version command
		"Show version information.": "バージョン情報を表示",
		"vidgen version %s":         "vidgen バージョン %s",

		// Shared flags
		"Path to Chrome executable (falls back to CHROME_PATH env, then system default).": "Chrome実行ファイルのパス（CHROME_PATH環境変数、システムデフォルトの順にフォールバック）",
		"Enable debug output (per-frame PNGs, scene HTML, timing plan).": "デバッグ出力を有効化（フレームPNG、シーンHTML、タイミングプラン）",
		"Directory for debug output.":          "デバッグ出力のディレクトリ",
		"Log level (debug, info, warn, error).": "ログレベル（debug, info, warn, error）",
		"Suppress all log output.":             "すべてのログ出力を抑制",
		"Disable the terminal progress bar.":   "ターミナルのプログレスバーを無効化",
	})
}
