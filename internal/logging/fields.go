package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// ProviderFields 提供 provider 名称与挂载根路径，供生命周期与监控日志复用。
func ProviderFields(name, root string) logrus.Fields {
	return logrus.Fields{
		"provider": name,
		"root":     root,
	}
}

// CacheFields 描述一次缓存失效操作（flush/refresh）的目标。
func CacheFields(cacheID, path, op string) logrus.Fields {
	return logrus.Fields{
		"cache_id": cacheID,
		"path":     path,
		"op":       op,
	}
}

// RequestFields 提供 provider/资源路径/命中状态字段，供资源请求日志复用。
func RequestFields(provider, resourcePath string, found bool, children int) logrus.Fields {
	return logrus.Fields{
		"provider": provider,
		"path":     resourcePath,
		"found":    found,
		"children": children,
	}
}
