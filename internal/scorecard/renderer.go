package scorecard

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io/fs"
	"math/rand"
	"os"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
)

// ErrTemplateMissing 表示模板图不存在，调用方应按资源缺失而非服务故障处理。
var ErrTemplateMissing = errors.New("scorecard template missing")

const footerCredit = "Variety Game Score by HaywardGG"

// Renderer 在模板图上排版成绩文字并输出 PNG。字体在构建时解析一次，
// 模板与标语文件每次渲染时读取。
type Renderer struct {
	templatePath string
	taglinesPath string
	font         *truetype.Font
	randIntn     func(int) int
}

// NewRenderer 构建渲染器。内嵌字体解析失败时返回错误，调用方应把该
// 渲染器视为不可用。
func NewRenderer(templatePath, taglinesPath string) (*Renderer, error) {
	fnt, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse builtin font: %w", err)
	}
	return &Renderer{
		templatePath: templatePath,
		taglinesPath: taglinesPath,
		font:         fnt,
		randIntn:     rand.Intn,
	}, nil
}

// Render 归一入参、选定标语并完成排版，返回 PNG 字节。模板缺失返回
// ErrTemplateMissing，其余错误均视为渲染暂不可用。
func (r *Renderer) Render(req Request) ([]byte, error) {
	if _, err := os.Stat(r.templatePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrTemplateMissing
		}
		return nil, fmt.Errorf("stat template: %w", err)
	}

	tpl, err := imaging.Open(r.templatePath)
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	played, total, score := reconcile(req)
	tagline := normalizeTagline(req.Tagline)
	if tagline == "" {
		tagline = pickTagline(loadTiers(r.taglinesPath), score, r.randIntn)
	}

	dc := gg.NewContextForImage(tpl)
	width := float64(dc.Width())
	height := float64(dc.Height())

	const (
		titleSize    = 38.0
		scoreSize    = 46.0
		subtitleSize = 22.0
		footerSize   = 26.0
		lineSpacing  = 1.55
	)

	blockHeight := (titleSize + scoreSize + subtitleSize) * lineSpacing
	y := height*0.44 - blockHeight/2 + titleSize

	r.setFace(dc, titleSize)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("I scored.", width/2, y, 0.5, 0)

	y += titleSize * lineSpacing
	r.setFace(dc, scoreSize)
	scoreLabel := fmt.Sprintf("%d/%d", played, total)
	if total > 0 && played == total {
		r.drawGoldStroked(dc, scoreLabel, width/2, y)
	} else {
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(scoreLabel, width/2, y, 0.5, 0)
	}

	y += scoreSize * lineSpacing
	r.setFace(dc, subtitleSize)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(tagline, width/2, y, 0.5, 0)

	r.setFace(dc, footerSize)
	dc.SetRGBA(1, 1, 1, 0.75)
	dc.DrawStringAnchored(footerCredit, width/2, height*0.95, 0.5, 0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode scorecard: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) setFace(dc *gg.Context, size float64) {
	dc.SetFontFace(truetype.NewFace(r.font, &truetype.Options{Size: size}))
}

// drawGoldStroked 渲染满分专属的金色描边文字。gg 不支持文字描边，这里
// 用八方向偏移重绘出 2px 的描边效果。
func (r *Renderer) drawGoldStroked(dc *gg.Context, text string, x, y float64) {
	const strokeWidth = 2.0

	dc.SetRGBA(0, 0, 0, 0.7)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			dc.DrawStringAnchored(text, x+float64(dx)*strokeWidth, y+float64(dy)*strokeWidth, 0.5, 0)
		}
	}

	dc.SetRGB255(255, 215, 0)
	dc.DrawStringAnchored(text, x, y, 0.5, 0)
}
