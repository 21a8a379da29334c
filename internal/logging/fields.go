package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// ImportFields 提供 appid/rank 字段，供导入流程日志复用。
func ImportFields(appid, rank int) logrus.Fields {
	return logrus.Fields{
		"appid": appid,
		"rank":  rank,
	}
}

// CacheFields 提供缓存键与候选地址字段，供图片缓存日志复用。
func CacheFields(key, candidate string) logrus.Fields {
	return logrus.Fields{
		"cache_key": key,
		"candidate": candidate,
	}
}
