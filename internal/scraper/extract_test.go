package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testBase = "https://example.com"

func TestExtractDetailNamePriority(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<h1>サイトタイトル</h1>
		<div class="cardlist-Detail"><div class="txt"><h1 class="ttl">竜騎士</h1></div></div>
		</body></html>`)

	rec := ExtractDetail(doc, testBase)
	assert.Equal(t, "竜騎士", rec["name"])
}

func TestExtractDetailNameFallsBackToPlainH1(t *testing.T) {
	doc := mustDoc(t, `<html><body><h1> 天使の加護 </h1></body></html>`)

	rec := ExtractDetail(doc, testBase)
	assert.Equal(t, "天使の加護", rec["name"])
}

func TestExtractDetailImageSkipsLogoAndAbsolutizes(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="card-Detail_Image"><img src="/assets/images/common/logo.png"></div>
		<main><img src="/cardlist/img/BP01-001.png"></main>
		</body></html>`)

	rec := ExtractDetail(doc, testBase)
	assert.Equal(t, "https://example.com/cardlist/img/BP01-001.png", rec["image_url"])
}

func TestExtractDetailDefinitionList(t *testing.T) {
	doc := mustDoc(t, `<html><body><dl>
		<dt>カード番号</dt><dd>BP01-001</dd>
		<dt>クラス：</dt><dd>ドラゴン</dd>
		<dt>種類</dt><dd>フォロワー</dd>
		<dt>コスト</dt><dd><img src="/img/num5.png" alt="5"></dd>
		<dt>イラストレーター</dt><dd> 山田 太郎 </dd>
		</dl></body></html>`)

	rec := ExtractDetail(doc, testBase)
	assert.Equal(t, "BP01-001", rec["cardno"])
	assert.Equal(t, "ドラゴン", rec["class"], "full-width colon label must still match")
	assert.Equal(t, "フォロワー", rec["kind"])
	assert.Equal(t, "5", rec["cost"], "icon-only value read from img alt")
	assert.Equal(t, "山田 太郎", rec["illustrator"])
}

func TestExtractDetailValueSpacedAtElementBoundaries(t *testing.T) {
	doc := mustDoc(t, `<html><body><dl>
		<dt>タイプ</dt><dd><span>兵士</span><span>土の印</span></dd>
		</dl></body></html>`)

	rec := ExtractDetail(doc, testBase)
	assert.Equal(t, "兵士 土の印", rec["type"], "adjacent child elements must not run together")
}

func TestExtractDetailRepeatedFieldMerges(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<dl><dt>収録商品</dt><dd>Box A</dd></dl>
		<dl><dt>収録商品</dt><dd>Box B</dd></dl>
		<dl><dt>収録商品</dt><dd>Box A</dd></dl>
		</body></html>`)

	rec := ExtractDetail(doc, testBase)
	assert.Equal(t, "Box A / Box B", rec["expansion"])
}

func TestExtractDetailSkipsUnpairedDefinitionList(t *testing.T) {
	doc := mustDoc(t, `<html><body><dl>
		<dt>カード名</dt><dt>クラス</dt><dd>エルフ</dd>
		</dl></body></html>`)

	rec := ExtractDetail(doc, testBase)
	assert.Empty(t, rec["name"])
	assert.Empty(t, rec["class"])
}

func TestExtractDetailAbilityBlock(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="detail">炎の吐息<br><img src="/icon/evo.png" alt="【進化】">する  時、<br><br>2ダメージ</div>
		</body></html>`)

	rec := ExtractDetail(doc, testBase)
	assert.Equal(t, "炎の吐息\n【進化】する 時、\n\n2ダメージ", rec["ability"])
}

func TestExtractDetailAbilityBlockOutranksDefinitionList(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<dl><dt>能力</dt><dd>短い要約</dd></dl>
		<div class="detail">完全な能力テキスト</div>
		</body></html>`)

	rec := ExtractDetail(doc, testBase)
	assert.Equal(t, "完全な能力テキスト", rec["ability"])
}

func TestExtractDetailAbilityFallbackFillsEmptyOnly(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="CardText">守護を持つ</div>
		</body></html>`)
	rec := ExtractDetail(doc, testBase)
	assert.Equal(t, "守護を持つ", rec["ability"])

	doc = mustDoc(t, `<html><body>
		<dl><dt>能力</dt><dd>本文</dd></dl>
		<div class="CardText">別のテキスト</div>
		</body></html>`)
	rec = ExtractDetail(doc, testBase)
	assert.Equal(t, "本文", rec["ability"])
}

func TestExtractDetailStatusBlock(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<dl><dt>コスト</dt><dd>3</dd></dl>
		<div class="status">
			<div class="status-Item-Cost">コスト5</div>
			<div class="status-Item-Power">パワー4</div>
			<div class="status-Item-Hp">体力2</div>
		</div>
		</body></html>`)

	rec := ExtractDetail(doc, testBase)
	assert.Equal(t, "3", rec["cost"], "definition list value is never overwritten")
	assert.Equal(t, "4", rec["power"])
	assert.Equal(t, "2", rec["hp"])
}

func TestExtractDetailEmptyPage(t *testing.T) {
	rec := ExtractDetail(mustDoc(t, `<html><body><p>not found</p></body></html>`), testBase)
	assert.Empty(t, rec)
}

func TestCanonicalField(t *testing.T) {
	tests := []struct {
		label string
		field string
		ok    bool
	}{
		{"カード番号", "cardno", true},
		{"カード番号:", "cardno", true},
		{"クラス ：", "class", true},
		{"パワー", "power", true},
		{"攻撃力", "power", true},
		{"未知のラベル", "", false},
	}
	for _, tc := range tests {
		field, ok := canonicalField(normalizeLabel(tc.label))
		assert.Equal(t, tc.ok, ok, tc.label)
		assert.Equal(t, tc.field, field, tc.label)
	}
}
