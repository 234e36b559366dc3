package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Rendering %q: %d scene(s), %d format(s), %dfps, quality=%s": "%q をレンダリング中: %d シーン, %d フォーマット, %dfps, 品質=%s",
		"Render complete":                       "レンダリングが完了しました",
		"Format %q complete":                    "フォーマット %q が完了しました",
		"Format %q: %dx%d":                      "フォーマット %q: %dx%d",
		"Output: %s":                            "出力: %s",
		"Interrupted, shutting down...":         "中断されました。シャットダウン中...",

		// Narration
		"Narration synthesis complete":          "ナレーション合成が完了しました",
		"Narration engine unavailable, rendering silent": "ナレーションエンジンが利用できないため、無音でレンダリングします",
		"Narration for scene %d failed (%s), continuing without audio": "シーン %d のナレーションに失敗しました (%s)。音声なしで続行します",

		// Capture
		"Scene %d captured (%s)":                "シーン %d をキャプチャしました (%s)",
		"Launching browser":                     "ブラウザを起動中",
		"Browser closed":                        "ブラウザを閉じました",

		// Transitions
		"Unknown transition %q between scenes %d and %d, using fade": "シーン %[2]d と %[3]d の間の不明なトランジション %[1]q、フェードを使用します",

		// Subtitles
		"Subtitles: %s":                         "字幕: %s",
		"Failed to write subtitles (%s), continuing without them": "字幕の書き込みに失敗しました (%s)。字幕なしで続行します",
		"Subtitle burn-in failed (%s), keeping the plain video": "字幕の焼き込みに失敗しました (%s)。字幕なしの動画を保持します",
	})
}
