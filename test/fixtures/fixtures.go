// Package fixtures provides HTML test fixtures for testing the page
// parsers.
package fixtures

// Note IDs used across the fixtures. All are 24 alphanumeric
// characters, the length the platform uses.
const (
	TokenNoteID   = "65a1b2c3d4e5f60718293a4b"
	ExploreNoteID = "65ffeeddccbbaa0099887766"
	CoverNoteID   = "64abcdef0123456789abcdef"
	AttrNoteID    = "63cafe00112233445566feed"
)

// GenerateFavoritesPage creates a favorites-tab snapshot with one item
// per extraction shape:
//   - a hover-revealed profile link carrying an access token, next to a
//     plain explore link pointing at a DIFFERENT ID (the token link must
//     win)
//   - a plain explore link only
//   - a cover image whose CDN path embeds the ID
//   - a data attribute on the container
//   - a junk item nothing can identify
func GenerateFavoritesPage() string {
	return `
<!DOCTYPE html>
<html>
<head><title>收藏</title></head>
<body>
<div class="feeds-container">

<section class="note-item">
    <a href="/user/profile/5f9e8d7c6b5a4932/` + TokenNoteID + `?xsec_token=AB7zK9%3D%3D&xsec_source=pc_user">
        <img src="https://sns-webpic-qc.xhscdn.com/202601/` + TokenNoteID + `!nd_dft_wlteh_webp_3"/>
    </a>
    <a href="/explore/65dec0y0000000000000dec0">stale link</a>
    <div class="title">松弛感咖啡角落分享</div>
    <a href="/user/profile/5f9e8d7c6b5a4932"><span class="author-name">山茶与鹿</span></a>
    <span class="time">01-15</span>
</section>

<section class="note-item">
    <a href="/explore/` + ExploreNoteID + `">
        <img src="https://sns-webpic-qc.xhscdn.com/cover/plain!nd_dft_wlteh_webp_3"/>
    </a>
    <div class="title">周末徒步路线</div>
</section>

<section class="note-item">
    <div class="cover">
        <img src="https://sns-webpic-qc.xhscdn.com/202601/` + CoverNoteID + `!nd_dft_wgth_webp_3"/>
    </div>
    <div class="title">只有封面的笔记</div>
</section>

<section class="note-item" data-note-id="` + AttrNoteID + `">
    <div class="title">属性兜底</div>
</section>

<section class="note-item">
    <div class="title">广告位</div>
    <img src="https://ads.example.com/banner.png"/>
</section>

</div>
</body>
</html>
`
}

// GenerateSparseFavoritesPage creates a favorites snapshot with fewer
// identifiable items than any reasonable request limit.
func GenerateSparseFavoritesPage() string {
	return `
<!DOCTYPE html>
<html>
<body>
<section class="note-item"><a href="/explore/650000000000000000000001">1</a></section>
<section class="note-item"><a href="/explore/650000000000000000000002">2</a></section>
<section class="note-item"><a href="/explore/650000000000000000000003">3</a></section>
<section class="note-item"><a href="/explore/650000000000000000000004">4</a></section>
<section class="note-item"><a href="/explore/650000000000000000000005">5</a></section>
</body>
</html>
`
}

// GenerateSearchPage creates a search-results snapshot with two
// identifiable items and one junk card.
func GenerateSearchPage() string {
	return `
<!DOCTYPE html>
<html>
<head><title>搜索</title></head>
<body>
<div class="search-layout">
<section class="note-item">
    <a href="/user/profile/88aa99bb/` + TokenNoteID + `?xsec_token=SRCH%2Btok&xsec_source=pc_search">
        <img src="https://sns-webpic-qc.xhscdn.com/s/` + TokenNoteID + `!search"/>
    </a>
    <div class="title">手冲咖啡入门</div>
</section>
<section class="note-item">
    <a href="/explore/` + ExploreNoteID + `">第二条</a>
    <div class="title">咖啡豆烘焙曲线</div>
</section>
<section class="note-item">
    <div class="title">相关搜索</div>
</section>
</div>
</body>
</html>
`
}

// GenerateDetailPage creates a note detail snapshot: title, body with
// line breaks and hashtags, author, counters, date, and a three-image
// carousel with an avatar thumbnail that must be excluded.
func GenerateDetailPage() string {
	return `
<!DOCTYPE html>
<html>
<head>
    <title>笔记详情</title>
    <meta property="og:title" content="fallback title"/>
    <meta property="og:image" content="https://sns-webpic-qc.xhscdn.com/og/` + TokenNoteID + `/cover"/>
</head>
<body>
<div id="noteContainer">
    <div class="author-wrapper">
        <a href="/user/profile/5f9e8d7c6b5a4932"><img class="avatar" src="https://sns-avatar-qc.xhscdn.com/avatar/abc.jpg"/></a>
        <a href="/user/profile/5f9e8d7c6b5a4932"><span class="username">山茶与鹿</span></a>
    </div>
    <div class="media-container">
        <div class="swiper-slide"><img src="https://sns-webpic-qc.xhscdn.com/202601/` + TokenNoteID + `/1!nd_dft"/></div>
        <div class="swiper-slide"><img src="https://sns-webpic-qc.xhscdn.com/202601/` + TokenNoteID + `/2!nd_dft"/></div>
        <div class="swiper-slide"><img src="https://sns-avatar-qc.xhscdn.com/avatar/abc.jpg"/></div>
    </div>
    <div id="detail-title">松弛感咖啡角落分享</div>
    <div id="detail-desc">
        周末在家布置了一个小小的咖啡角。<br/>
        器具清单都放在图三了。
        <a href="/search_result?keyword=咖啡">#咖啡</a>
        <a href="/search_result?keyword=家居">#家居</a>
        <a href="/search_result?keyword=咖啡">#咖啡</a>
    </div>
    <div class="interact-container">
        <div class="like-wrapper"><span class="count">1.2万</span></div>
        <div class="collect-wrapper"><span class="count">856</span></div>
        <div class="chat-wrapper"><span class="count">评论</span></div>
    </div>
    <div class="bottom-container"><span class="date">2026-01-15 浙江</span></div>
</div>
</body>
</html>
`
}

// GenerateDegradedDetailPage creates a detail snapshot where the
// rendered DOM carries no usable elements and only the OpenGraph meta
// tags survive. The og:url embeds the note ID.
func GenerateDegradedDetailPage() string {
	return `
<!DOCTYPE html>
<html>
<head>
    <meta property="og:title" content="降噪耳机通勤实测"/>
    <meta property="og:description" content="三款主流降噪耳机的地铁通勤对比。"/>
    <meta property="og:url" content="https://www.xiaohongshu.com/explore/` + ExploreNoteID + `"/>
</head>
<body>
<div id="noteContainer"><div class="media-container"></div></div>
</body>
</html>
`
}

// GenerateDetailPageWithoutID creates a detail snapshot whose URL and
// body carry no recognizable note ID.
func GenerateDetailPageWithoutID() string {
	return `
<!DOCTYPE html>
<html>
<head><title>出错了</title></head>
<body>
<div id="noteContainer">
    <div id="detail-title">当前笔记暂时无法浏览</div>
</div>
</body>
</html>
`
}
