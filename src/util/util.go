package util

import (
	"errors"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrEmptyHost = errors.New("url has no host")

// 读取配置文件，环境变量可覆盖同名配置（database.url -> DATABASE_URL）
// 当前目录存在.env时先加载
// filePath为空时仅使用defaults与环境变量
func ReadConfig(filePath string, defaults map[string]interface{}, out interface{}) error {
	_ = godotenv.Load() // .env可以不存在

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // for nested structure
	v.AutomaticEnv()

	if filePath != "" {
		v.SetConfigFile(filePath)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	return v.Unmarshal(out)
}

// 去掉协议之外的前缀：转小写、移除端口与开头的www.
func NormalizeDomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, found := cutPort(host); found {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	return strings.TrimPrefix(host, "www.")
}

func cutPort(host string) (string, string, bool) {
	i := strings.LastIndex(host, ":")
	if i < 0 || strings.Contains(host[i:], "]") {
		return host, "", false
	}
	return host[:i], host[i+1:], true
}

// 从完整url中提取规范化的domain
func GetDomain(u string) (string, error) {
	oURL, err := url.Parse(u)
	if err != nil {
		return "", err
	}
	if oURL.Host == "" {
		return "", ErrEmptyHost
	}
	return NormalizeDomain(oURL.Hostname()), nil
}

// 补全协议，导入数据中的url常常只有域名部分
func EnsureScheme(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(strings.ToLower(u), "http") {
		return u
	}
	return "http://" + u
}

// 移除hash tag，作为visited set的key
func CanonicalURL(u string) (string, error) {
	oURL, err := url.Parse(u)
	if err != nil {
		return "", err
	}
	oURL.Fragment = ""
	oURL.RawFragment = ""
	if oURL.Path == "" {
		oURL.Path = "/"
	}
	return oURL.String(), nil
}

// host是否属于domain；allowSubdomains为true时子域名也算
func HostMatches(host string, domain string, allowSubdomains bool) bool {
	h := NormalizeDomain(host)
	d := NormalizeDomain(domain)
	if h == "" || d == "" {
		return false
	}
	if h == d {
		return true
	}
	return allowSubdomains && strings.HasSuffix(h, "."+d)
}
