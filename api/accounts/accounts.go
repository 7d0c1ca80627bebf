// Copyright (c) 2024 The HasChain developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"encoding/hex"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lutfi-haslab/haschain/api/utils"
	"github.com/lutfi-haslab/haschain/has"
	"github.com/lutfi-haslab/haschain/state"
)

// Account is the JSON presentation of an account.
type Account struct {
	Balance string `json:"balance"`
	Nonce   uint64 `json:"nonce"`
	HasCode bool   `json:"hasCode"`
}

// Accounts serves account reads.
type Accounts struct {
	stater *state.Stater
}

// New create an Accounts endpoint group.
func New(stater *state.Stater) *Accounts {
	return &Accounts{stater: stater}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := has.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}

	st := a.stater.NewState()
	balance, err := st.GetBalance(addr)
	if err != nil {
		return err
	}
	nonce, err := st.GetNonce(addr)
	if err != nil {
		return err
	}
	code, err := st.GetCode(addr)
	if err != nil {
		return err
	}

	return utils.WriteJSON(w, &Account{
		Balance: "0x" + balance.Text(16),
		Nonce:   nonce,
		HasCode: len(code) > 0,
	})
}

func (a *Accounts) handleGetCode(w http.ResponseWriter, req *http.Request) error {
	addr, err := has.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}

	code, err := a.stater.NewState().GetCode(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, map[string]string{
		"code": "0x" + hex.EncodeToString(code),
	})
}

func (a *Accounts) handleGetStorage(w http.ResponseWriter, req *http.Request) error {
	addr, err := has.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	key, err := has.ParseBytes32(mux.Vars(req)["key"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "key"))
	}

	value, err := a.stater.NewState().GetStorage(addr, key)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, map[string]string{
		"value": value.String(),
	})
}

// Mount attaches the endpoints to the router.
func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/code").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetCode))
	sub.Path("/{address}/storage/{key}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetStorage))
}
