package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/steam-top/steam-top/internal/config"
	"github.com/steam-top/steam-top/internal/imagecache"
	"github.com/steam-top/steam-top/internal/logging"
	"github.com/steam-top/steam-top/internal/snapshot"
	"github.com/steam-top/steam-top/internal/steam"
)

// Options 汇总一次导入运行所需的全部协作方，全部显式注入、无环境查找。
type Options struct {
	Config *config.Config
	Logger *logrus.Logger
	Charts *steam.ChartsClient
	Store  *steam.StoreClient
	Images *imagecache.Cache

	// CDN 为空时使用官方 steamstatic 基址。
	CDN *steam.CDNResolver
}

// Importer 执行两阶段导入：先过滤再取图，最后原子替换快照。
type Importer struct {
	cfg    *config.Config
	logger *logrus.Logger
	charts *steam.ChartsClient
	store  *steam.StoreClient
	images *imagecache.Cache
	cdn    *steam.CDNResolver
	kind   steam.ImageKind
}

// stagedGame 是通过了阶段一过滤、尚未解析缩略图的条目。
type stagedGame struct {
	entry steam.ChartEntry
	rank  int
	data  *steam.AppData
}

// New 校验依赖并构建导入器。
func New(opts Options) (*Importer, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Charts == nil || opts.Store == nil {
		return nil, errors.New("steam clients are required")
	}
	if opts.Images == nil {
		return nil, errors.New("image cache is required")
	}

	kind, err := steam.ParseImageKind(opts.Config.Image.ImageType)
	if err != nil {
		return nil, err
	}

	cdn := opts.CDN
	if cdn == nil {
		cdn = steam.NewCDNResolver("", "")
	}

	return &Importer{
		cfg:    opts.Config,
		logger: opts.Logger,
		charts: opts.Charts,
		store:  opts.Store,
		images: opts.Images,
		cdn:    cdn,
		kind:   kind,
	}, nil
}

// Run 执行一次完整导入。锁被占用时返回 ErrLockHeld；上游结构非法或写盘
// 失败时返回错误且不触碰现有快照，保住最后一份已知完好的数据。
func (imp *Importer) Run(ctx context.Context) error {
	lock, err := acquireLock(imp.cfg.Import.LockFile)
	if err != nil {
		return err
	}
	defer lock.release()

	entries, err := imp.charts.TopGames(ctx)
	if err != nil {
		return fmt.Errorf("load charts: %w", err)
	}

	staged, err := imp.rankAndFilter(ctx, entries)
	if err != nil {
		return err
	}

	games := imp.resolveThumbnails(ctx, staged)

	if err := snapshot.Write(imp.cfg.Import.DataFile, snapshot.New(games)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	fields := logging.BaseFields("import_complete", imp.cfg.Import.DataFile)
	fields["count"] = len(games)
	fields["image_type"] = string(imp.kind)
	imp.logger.WithFields(fields).Info("导入完成")
	return nil
}

// rankAndFilter 是阶段一：按榜单顺序补充 store 元数据并应用排除规则，
// 不触发任何图片下载。store 无数据或命中排除的条目不占用名次。
func (imp *Importer) rankAndFilter(ctx context.Context, entries []steam.ChartEntry) ([]stagedGame, error) {
	limit := imp.cfg.Import.ImportLimit
	staged := make([]stagedGame, 0, limit)
	rank := 0

	for _, entry := range entries {
		if rank >= limit {
			break
		}

		data, err := imp.store.Details(ctx, entry.AppID)
		if err != nil {
			return nil, fmt.Errorf("enrich appid %d: %w", entry.AppID, err)
		}
		if data == nil {
			continue
		}

		if shouldExcludeType(data.Type, imp.cfg.Import.ExcludeTypes, imp.cfg.Import.ExcludeIfTypeMissing) {
			imp.logger.WithFields(logrus.Fields{
				"action": "exclude_type",
				"appid":  entry.AppID,
				"type":   data.Type,
			}).Debug("条目被类型规则排除")
			continue
		}
		if shouldExcludeTags(data.Categories, data.Genres, imp.cfg.Import.ExcludeTags) {
			imp.logger.WithFields(logrus.Fields{
				"action": "exclude_tags",
				"appid":  entry.AppID,
			}).Debug("条目被标签规则排除")
			continue
		}

		rank++
		staged = append(staged, stagedGame{entry: entry, rank: rank, data: data})
	}

	return staged, nil
}

// resolveThumbnails 是阶段二：只为通过过滤的条目解析缩略图。单个条目
// 全部候选失败只意味着该条目没有缩略图，不影响整次运行。
func (imp *Importer) resolveThumbnails(ctx context.Context, staged []stagedGame) []snapshot.Game {
	games := make([]snapshot.Game, 0, len(staged))

	for _, sg := range staged {
		appid := sg.entry.AppID

		primary := imp.cdn.PrimaryURL(appid, imp.kind)
		fallbacks := append([]string{imp.kind.PickStoreImage(sg.data)}, imp.cdn.FallbackURLs(appid)...)

		thumbnail := imp.images.Fetch(ctx, primary, fallbacks)
		if thumbnail == "" {
			imp.logger.WithFields(logging.ImportFields(appid, sg.rank)).
				Warn("条目无可用缩略图")
		}

		isFree := 0
		if sg.data.IsFree {
			isFree = 1
		}

		name := sg.data.Name
		if name == "" {
			name = "Unknown"
		}

		games = append(games, snapshot.Game{
			Rank:           sg.rank,
			AppID:          appid,
			Name:           name,
			IsFree:         isFree,
			PriceFormatted: sg.data.PriceLabel(),
			CurrentPlayers: sg.entry.ConcurrentInGame,
			PeakPlayers:    sg.entry.PeakInGame,
			Thumbnail:      thumbnail,
			StoreURL:       steam.StoreURL(appid),
			ImageType:      string(imp.kind),
			FallbackKind:   imp.kind.FallbackKind(),
		})
	}

	return games
}
