package checklist

import "github.com/nao1215/auditsheet/internal/model"

// Names of the built-in checklists.
const (
	// CROInternal is the imaging CRO internal audit check sheet.
	CROInternal = "cro-internal"

	// CROVendor is the vendor qualification checklist used when auditing
	// subcontracted imaging vendors.
	CROVendor = "cro-vendor"
)

// Status choices for enumerated checklists.
const (
	StatusConfirmed     model.Status = "confirmed"
	StatusFinding       model.Status = "finding"
	StatusNotApplicable model.Status = "not_applicable"
)

// builtins is built at package initialization. A malformed built-in is a
// programming error and panics before main runs.
var builtins = []*Definition{
	mustNew(CROInternal, "Imaging CRO 内部監査チェックシート", []Category{
		{Name: "1. 会社情報と体制", Items: []Item{
			{ID: "1.1", Title: "会社概要・所在地・人員構成"},
			{ID: "1.2", Title: "組織図（最新版）と役割の明確化"},
			{ID: "1.3", Title: "主要な受託業務と実績の記録"},
		}},
		{Name: "2. 品質保証と監査体制", Items: []Item{
			{ID: "2.1", Title: "QA/QCの体制と人員"},
			{ID: "2.2", Title: "SOPに基づく監査計画の有無"},
			{ID: "2.3", Title: "監査結果とCAPA（是正措置）管理"},
			{ID: "2.4", Title: "SOPの管理・改訂履歴の確認"},
		}},
		{Name: "3. データ・文書管理", Items: []Item{
			{ID: "3.1", Title: "データのバックアップ体制（頻度、手段）"},
			{ID: "3.2", Title: "電子データの保管場所・セキュリティ"},
			{ID: "3.3", Title: "文書保管規定・旧版管理の有無"},
		}},
		{Name: "4. 教育・訓練", Items: []Item{
			{ID: "4.1", Title: "教育研修SOPの整備状況"},
			{ID: "4.2", Title: "教育訓練の記録・更新状況"},
			{ID: "4.3", Title: "専門的スキル・資格の保有状況"},
		}},
		{Name: "5. システムとセキュリティ", Items: []Item{
			{ID: "5.1", Title: "施設の入退室管理（物理的セキュリティ）"},
			{ID: "5.2", Title: "システムバリデーション（CSV）の有無"},
			{ID: "5.3", Title: "クラウドやNASの安全性とログ管理"},
		}},
		{Name: "6. プロジェクト管理", Items: []Item{
			{ID: "6.1", Title: "プロジェクト指名書・責任者の明確化"},
			{ID: "6.2", Title: "業務手順の一貫性と記録の整備"},
		}},
	}),
	mustNew(CROVendor, "Imaging CRO 委託先監査チェックリスト", []Category{
		{Items: []Item{
			{ID: "v1", Title: "品質方針と品質マニュアル", Description: "品質方針が文書化され、最新版が全従業員に周知されているか。"},
			{ID: "v2", Title: "SOP一覧と改訂管理", Description: "SOPの一覧、承認記録、改訂履歴が維持されているか。"},
			{ID: "v3", Title: "画像データの受領・転送手順", Description: "DICOMデータの受領、匿名化、転送の手順と記録が整備されているか。"},
			{ID: "v4", Title: "読影者の資格と教育記録", Description: "独立読影者の資格証明とトレーニング記録が保管されているか。"},
			{ID: "v5", Title: "コンピュータ化システムバリデーション", Description: "使用システムのバリデーション文書と変更管理記録があるか。"},
			{ID: "v6", Title: "アクセス権限と監査証跡", Description: "ユーザーアカウント管理と監査証跡のレビューが定期的に行われているか。"},
			{ID: "v7", Title: "バックアップとリストア試験", Description: "バックアップの頻度・保管場所とリストア試験の実施記録を確認する。"},
			{ID: "v8", Title: "逸脱・CAPA管理", Description: "逸脱の記録、原因分析、是正・予防措置の完了確認が行われているか。"},
		}},
	}, WithPrefix("vendor_audit"), WithStatuses(StatusConfirmed, StatusFinding, StatusNotApplicable)),
}

// Builtin returns the built-in checklists in display order.
func Builtin() []*Definition {
	return append([]*Definition(nil), builtins...)
}

// mustNew is New for static definitions.
func mustNew(name, title string, categories []Category, opts ...Option) *Definition {
	d, err := New(name, title, categories, opts...)
	if err != nil {
		panic(err)
	}
	return d
}
